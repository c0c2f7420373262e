package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nestlog/tracker-server-go/internal/model"
)

// SessionRecordRepository is the remote-store collaborator that owns
// finalized session records. Insert is called exactly once per session end;
// idempotency on retry is this collaborator's responsibility (the record id
// is derived from baby and start time, and the table upserts on it).
type SessionRecordRepository interface {
	Insert(ctx context.Context, params model.CreateSessionRecordParams) (*model.SessionRecord, error)
	FindByBabyID(ctx context.Context, babyID string, limit, offset int) ([]model.SessionRecord, error)
}

type sessionRecordRepo struct {
	db queryer
}

func NewSessionRecordRepository(db *sqlx.DB) SessionRecordRepository {
	return &sessionRecordRepo{db: db}
}

func (r *sessionRecordRepo) Insert(ctx context.Context, params model.CreateSessionRecordParams) (*model.SessionRecord, error) {
	id := uuid.NewString()
	var record model.SessionRecord
	err := r.db.GetContext(ctx, &record, `
		INSERT INTO session_records (
			id, baby_id, type, start_time, end_time,
			left_seconds, right_seconds, total_seconds, dominant_side, notes, device_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (baby_id, start_time) DO UPDATE SET end_time = EXCLUDED.end_time
		RETURNING *
	`, id, params.BabyID, params.Type, params.StartTime, params.EndTime,
		params.LeftSeconds, params.RightSeconds, params.TotalSeconds,
		params.Dominant, params.Notes, params.DeviceID)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *sessionRecordRepo) FindByBabyID(ctx context.Context, babyID string, limit, offset int) ([]model.SessionRecord, error) {
	records := []model.SessionRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM session_records
		WHERE baby_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`, babyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return records, nil
}
