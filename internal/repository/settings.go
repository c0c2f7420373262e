package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/nestlog/tracker-server-go/internal/model"
)

// ScheduleSettingsRepository reads per-baby schedule configuration.
// A missing row is returned as (nil, nil); callers apply the documented
// defaults (intervalHours = 3, includePumping = false).
type ScheduleSettingsRepository interface {
	GetByBabyID(ctx context.Context, babyID string) (*model.ScheduleSettings, error)
}

type scheduleSettingsRepo struct {
	db queryer
}

func NewScheduleSettingsRepository(db *sqlx.DB) ScheduleSettingsRepository {
	return &scheduleSettingsRepo{db: db}
}

func (r *scheduleSettingsRepo) GetByBabyID(ctx context.Context, babyID string) (*model.ScheduleSettings, error) {
	var settings model.ScheduleSettings
	err := r.db.GetContext(ctx, &settings, `
		SELECT * FROM schedule_settings WHERE baby_id = $1
	`, babyID)
	return HandleNotFound(&settings, err)
}
