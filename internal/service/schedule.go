package service

import (
	"context"
	"time"

	apperrors "github.com/nestlog/tracker-server-go/internal/errors"
	"github.com/nestlog/tracker-server-go/internal/model"
	"github.com/nestlog/tracker-server-go/internal/repository"
	"github.com/nestlog/tracker-server-go/internal/schedule"
)

// ScheduleService resolves per-baby settings from the remote store and
// derives the next feeding time. The actual math lives in the schedule
// package; this layer only fetches inputs and applies defaults.
type ScheduleService struct {
	events          repository.EventRepository
	settings        repository.ScheduleSettingsRepository
	defaultInterval float64
}

func NewScheduleService(events repository.EventRepository, settings repository.ScheduleSettingsRepository, defaultInterval float64) *ScheduleService {
	return &ScheduleService{
		events:          events,
		settings:        settings,
		defaultInterval: defaultInterval,
	}
}

// NextFeedingResult carries the prediction plus the settings it was
// computed under, so the UI can explain the number.
type NextFeedingResult struct {
	NextDue        *time.Time `json:"nextDue"`
	IntervalHours  float64    `json:"intervalHours"`
	IncludePumping bool       `json:"includePumping"`
}

// NextFeeding computes when the baby's next feeding is due. A nil NextDue
// means there is no relevant event to predict from, which is expected for
// a fresh baby profile.
func (s *ScheduleService) NextFeeding(ctx context.Context, babyID string) (*NextFeedingResult, error) {
	intervalHours, includePumping, err := s.resolveSettings(ctx, babyID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByBabyID(ctx, babyID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &NextFeedingResult{
		NextDue:        schedule.NextDue(events, intervalHours, includePumping),
		IntervalHours:  intervalHours,
		IncludePumping: includePumping,
	}, nil
}

// IsEventRelevant answers whether a just-logged or just-deleted event of
// this type should trigger a schedule recomputation for the baby.
func (s *ScheduleService) IsEventRelevant(ctx context.Context, babyID string, eventType model.EventType) (bool, error) {
	_, includePumping, err := s.resolveSettings(ctx, babyID)
	if err != nil {
		return false, err
	}
	return schedule.IsTypeRelevant(eventType, includePumping), nil
}

// resolveSettings applies the documented defaults when the baby has no
// settings row: defaultInterval hours, pumping excluded.
func (s *ScheduleService) resolveSettings(ctx context.Context, babyID string) (float64, bool, error) {
	settings, err := s.settings.GetByBabyID(ctx, babyID)
	if err != nil {
		return 0, false, apperrors.Database(err)
	}
	if settings == nil {
		return s.defaultInterval, false, nil
	}
	return settings.IntervalHours, settings.IncludePumping, nil
}
