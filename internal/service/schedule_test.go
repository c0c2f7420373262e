package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nestlog/tracker-server-go/internal/errors"
	"github.com/nestlog/tracker-server-go/internal/model"
)

type fakeEventRepo struct {
	events []model.Event
	err    error
}

func (f *fakeEventRepo) ListByBabyID(ctx context.Context, babyID string) ([]model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeSettingsRepo struct {
	settings *model.ScheduleSettings
	err      error
}

func (f *fakeSettingsRepo) GetByBabyID(ctx context.Context, babyID string) (*model.ScheduleSettings, error) {
	return f.settings, f.err
}

var feedAt = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

func feedEvents() []model.Event {
	return []model.Event{
		{ID: "e1", BabyID: "b1", Type: model.EventTypeNursing, OccurredAt: feedAt},
		{ID: "e2", BabyID: "b1", Type: model.EventTypePumping, OccurredAt: feedAt.Add(time.Hour)},
	}
}

func TestNextFeeding(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults when settings are absent", func(t *testing.T) {
		svc := NewScheduleService(&fakeEventRepo{events: feedEvents()}, &fakeSettingsRepo{}, 3)

		result, err := svc.NextFeeding(ctx, "b1")
		require.NoError(t, err)

		assert.Equal(t, 3.0, result.IntervalHours)
		assert.False(t, result.IncludePumping)
		require.NotNil(t, result.NextDue)
		// Pumping excluded by default, so the nursing event anchors the prediction.
		assert.Equal(t, feedAt.Add(3*time.Hour), *result.NextDue)
	})

	t.Run("uses per-baby settings when present", func(t *testing.T) {
		settings := &model.ScheduleSettings{BabyID: "b1", IntervalHours: 2.5, IncludePumping: true}
		svc := NewScheduleService(&fakeEventRepo{events: feedEvents()}, &fakeSettingsRepo{settings: settings}, 3)

		result, err := svc.NextFeeding(ctx, "b1")
		require.NoError(t, err)

		assert.Equal(t, 2.5, result.IntervalHours)
		assert.True(t, result.IncludePumping)
		require.NotNil(t, result.NextDue)
		assert.Equal(t, feedAt.Add(time.Hour).Add(2*time.Hour+30*time.Minute), *result.NextDue)
	})

	t.Run("no relevant events yields nil prediction", func(t *testing.T) {
		svc := NewScheduleService(&fakeEventRepo{}, &fakeSettingsRepo{}, 3)

		result, err := svc.NextFeeding(ctx, "b1")
		require.NoError(t, err)
		assert.Nil(t, result.NextDue)
	})

	t.Run("event listing errors surface as database errors", func(t *testing.T) {
		svc := NewScheduleService(&fakeEventRepo{err: errors.New("timeout")}, &fakeSettingsRepo{}, 3)

		_, err := svc.NextFeeding(ctx, "b1")
		assertCode(t, err, apperrors.ErrCodeDatabase)
	})

	t.Run("settings errors surface as database errors", func(t *testing.T) {
		svc := NewScheduleService(&fakeEventRepo{}, &fakeSettingsRepo{err: errors.New("timeout")}, 3)

		_, err := svc.NextFeeding(ctx, "b1")
		assertCode(t, err, apperrors.ErrCodeDatabase)
	})
}

func TestIsEventRelevant(t *testing.T) {
	ctx := context.Background()

	t.Run("pumping relevance follows settings", func(t *testing.T) {
		svc := NewScheduleService(&fakeEventRepo{}, &fakeSettingsRepo{}, 3)
		relevant, err := svc.IsEventRelevant(ctx, "b1", model.EventTypePumping)
		require.NoError(t, err)
		assert.False(t, relevant)

		settings := &model.ScheduleSettings{BabyID: "b1", IntervalHours: 3, IncludePumping: true}
		svc = NewScheduleService(&fakeEventRepo{}, &fakeSettingsRepo{settings: settings}, 3)
		relevant, err = svc.IsEventRelevant(ctx, "b1", model.EventTypePumping)
		require.NoError(t, err)
		assert.True(t, relevant)
	})

	t.Run("diaper changes never trigger recomputation", func(t *testing.T) {
		svc := NewScheduleService(&fakeEventRepo{}, &fakeSettingsRepo{}, 3)
		relevant, err := svc.IsEventRelevant(ctx, "b1", model.EventTypeDiaper)
		require.NoError(t, err)
		assert.False(t, relevant)
	})
}
