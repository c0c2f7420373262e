package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestlog/tracker-server-go/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var recordColumns = []string{
	"id", "baby_id", "type", "start_time", "end_time",
	"left_seconds", "right_seconds", "total_seconds", "dominant_side",
	"notes", "device_id", "created_at",
}

func TestSessionRecordInsert(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(15 * time.Minute)

	params := model.CreateSessionRecordParams{
		BabyID:       "b1",
		Type:         model.SessionTypeNursing,
		StartTime:    start,
		EndTime:      end,
		LeftSeconds:  90,
		RightSeconds: 0,
		TotalSeconds: 90,
		Dominant:     model.DominantLeft,
		Notes:        "fussy",
		DeviceID:     "dev-1",
	}

	t.Run("returns inserted record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRecordRepository(db)

		mock.ExpectQuery("INSERT INTO session_records").
			WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
				"rec-1", "b1", "nursing", start, end,
				90, 0, 90, "left", "fussy", "dev-1", end,
			))

		record, err := repo.Insert(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "rec-1", record.ID)
		assert.Equal(t, model.DominantLeft, record.Dominant)
		assert.Equal(t, 90, record.TotalSeconds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRecordRepository(db)

		mock.ExpectQuery("INSERT INTO session_records").
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Insert(context.Background(), params)
		assert.Error(t, err)
	})
}

func TestSessionRecordFindByBabyID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRecordRepository(db)

	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT \\* FROM session_records").
		WithArgs("b1", 20, 0).
		WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(
			"rec-1", "b1", "nursing", start, start.Add(time.Minute),
			60, 0, 60, "left", "", "dev-1", start,
		))

	records, err := repo.FindByBabyID(context.Background(), "b1", 20, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
}

func TestEventListByBabyID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	amount := 120.0
	mock.ExpectQuery("SELECT \\* FROM events").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "baby_id", "type", "occurred_at", "amount", "notes", "created_at"}).
			AddRow("e1", "b1", "nursing", at, nil, nil, at).
			AddRow("e2", "b1", "bottle", at.Add(time.Hour), amount, nil, at.Add(time.Hour)))

	events, err := repo.ListByBabyID(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventTypeNursing, events[0].Type)
	require.NotNil(t, events[1].Amount)
	assert.Equal(t, 120.0, *events[1].Amount)
}

func TestScheduleSettingsGetByBabyID(t *testing.T) {
	t.Run("returns settings row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewScheduleSettingsRepository(db)

		now := time.Now()
		mock.ExpectQuery("SELECT \\* FROM schedule_settings").
			WithArgs("b1").
			WillReturnRows(sqlmock.NewRows([]string{"baby_id", "interval_hours", "include_pumping", "updated_at"}).
				AddRow("b1", 2.5, true, now))

		settings, err := repo.GetByBabyID(context.Background(), "b1")
		require.NoError(t, err)
		require.NotNil(t, settings)
		assert.Equal(t, 2.5, settings.IntervalHours)
		assert.True(t, settings.IncludePumping)
	})

	t.Run("missing row returns nil without error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewScheduleSettingsRepository(db)

		mock.ExpectQuery("SELECT \\* FROM schedule_settings").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"baby_id", "interval_hours", "include_pumping", "updated_at"}))

		settings, err := repo.GetByBabyID(context.Background(), "nope")
		assert.NoError(t, err)
		assert.Nil(t, settings)
	})
}
