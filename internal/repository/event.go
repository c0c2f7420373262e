package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/nestlog/tracker-server-go/internal/model"
)

// EventRepository reads the logged care events the next-feeding
// computation is based on.
type EventRepository interface {
	ListByBabyID(ctx context.Context, babyID string) ([]model.Event, error)
}

type eventRepo struct {
	db queryer
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) ListByBabyID(ctx context.Context, babyID string) ([]model.Event, error) {
	events := []model.Event{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM events
		WHERE baby_id = $1
		ORDER BY occurred_at ASC, created_at ASC
	`, babyID)
	if err != nil {
		return nil, err
	}
	return events, nil
}
