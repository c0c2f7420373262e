// Package schedule computes which logged events count toward the feeding
// schedule and when the next feeding is due. Everything here is pure:
// callers supply the event list and settings, nothing is cached.
package schedule

import (
	"time"

	"github.com/nestlog/tracker-server-go/internal/model"
)

// baseTypes always count toward the feeding schedule.
var baseTypes = []model.EventType{
	model.EventTypeNursing,
	model.EventTypeBottle,
}

// RelevantTypes returns the set of event types that count toward the
// feeding schedule. Pumping is included only when the per-baby setting
// asks for it.
func RelevantTypes(includePumping bool) map[model.EventType]struct{} {
	types := make(map[model.EventType]struct{}, len(baseTypes)+1)
	for _, t := range baseTypes {
		types[t] = struct{}{}
	}
	if includePumping {
		types[model.EventTypePumping] = struct{}{}
	}
	return types
}

// IsTypeRelevant answers the single-event question: should logging or
// deleting an event of this type trigger a schedule recomputation.
func IsTypeRelevant(t model.EventType, includePumping bool) bool {
	_, ok := RelevantTypes(includePumping)[t]
	return ok
}

// FilterRelevant keeps only schedule-relevant events, preserving order.
func FilterRelevant(events []model.Event, includePumping bool) []model.Event {
	types := RelevantTypes(includePumping)
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if _, ok := types[e.Type]; ok {
			out = append(out, e)
		}
	}
	return out
}

// NextDue returns when the next feeding is due: the most recent relevant
// event plus the interval. Nil when no relevant event exists, which is a
// valid terminal state rather than an error. Ties on the timestamp go to
// the first-encountered event; identical timestamps are operationally
// indistinguishable anyway. Zero and fractional intervals are honored
// exactly.
func NextDue(events []model.Event, intervalHours float64, includePumping bool) *time.Time {
	relevant := FilterRelevant(events, includePumping)
	if len(relevant) == 0 {
		return nil
	}

	latest := relevant[0]
	for _, e := range relevant[1:] {
		if e.OccurredAt.After(latest.OccurredAt) {
			latest = e
		}
	}

	due := latest.OccurredAt.Add(time.Duration(intervalHours * float64(time.Hour)))
	return &due
}
