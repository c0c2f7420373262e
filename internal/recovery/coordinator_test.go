package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestlog/tracker-server-go/internal/model"
	"github.com/nestlog/tracker-server-go/internal/registry"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type memStore struct {
	sessions map[string]model.ActiveSession
	loadErrs []error
}

func (s *memStore) Load(ctx context.Context) (map[string]model.ActiveSession, []error) {
	out := make(map[string]model.ActiveSession, len(s.sessions))
	for k, v := range s.sessions {
		out[k] = v
	}
	return out, s.loadErrs
}

func (s *memStore) SaveAll(ctx context.Context, sessions map[string]model.ActiveSession) error {
	s.sessions = make(map[string]model.ActiveSession, len(sessions))
	for k, v := range sessions {
		s.sessions[k] = v
	}
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.sessions = make(map[string]model.ActiveSession)
	return nil
}

func persisted(babyID string, lastUpdate time.Time) model.ActiveSession {
	start := lastUpdate.Add(-10 * time.Minute)
	return model.ActiveSession{
		ID:          model.NewSessionID(babyID, start),
		BabyID:      babyID,
		Type:        model.SessionTypeNursing,
		StartTime:   start,
		CurrentSide: model.SideLeft,
		Durations:   map[model.Side]int{model.SideLeft: 600},
		LastUpdate:  lastUpdate,
		Active:      true,
	}
}

func newCoordinator(store *memStore) (*Coordinator, *registry.Registry) {
	reg := registry.New(store)
	coord := New(store, reg, 24*time.Hour)
	coord.nowFn = func() time.Time { return now }
	return coord, reg
}

func TestRunRecoversFreshSessions(t *testing.T) {
	store := &memStore{sessions: map[string]model.ActiveSession{
		"b1": persisted("b1", now.Add(-time.Hour)),
		"b2": persisted("b2", now.Add(-2*time.Minute)),
	}}
	coord, reg := newCoordinator(store)

	report := coord.Run(context.Background())

	assert.Equal(t, 2, report.Recovered)
	assert.Equal(t, 0, report.Expired)
	assert.Empty(t, report.Errors)
	assert.True(t, reg.Has("b1"))
	assert.True(t, reg.Has("b2"))
}

func TestRunExpiresStaleSessions(t *testing.T) {
	store := &memStore{sessions: map[string]model.ActiveSession{
		"fresh": persisted("fresh", now.Add(-23*time.Hour)),
		"stale": persisted("stale", now.Add(-25*time.Hour)),
	}}
	coord, reg := newCoordinator(store)

	report := coord.Run(context.Background())

	assert.Equal(t, 1, report.Recovered)
	assert.Equal(t, 1, report.Expired)
	require.Len(t, report.ExpiredSessions, 1)
	assert.Equal(t, "stale", report.ExpiredSessions[0].BabyID)

	assert.True(t, reg.Has("fresh"))
	assert.False(t, reg.Has("stale"))

	// The stale entry is pruned from the durable blob as well.
	assert.NotContains(t, store.sessions, "stale")
	assert.Contains(t, store.sessions, "fresh")
}

func TestRunIsIdempotent(t *testing.T) {
	store := &memStore{sessions: map[string]model.ActiveSession{
		"b1": persisted("b1", now.Add(-time.Hour)),
	}}
	coord, reg := newCoordinator(store)

	first := coord.Run(context.Background())
	assert.Equal(t, 1, first.Recovered)

	before := reg.Snapshot()
	second := coord.Run(context.Background())
	assert.Equal(t, 0, second.Recovered)
	assert.Equal(t, 0, second.Expired)
	assert.Equal(t, before, reg.Snapshot())
}

func TestRunAggregatesLoadErrors(t *testing.T) {
	store := &memStore{
		sessions: map[string]model.ActiveSession{
			"b1": persisted("b1", now.Add(-time.Hour)),
		},
		loadErrs: []error{errors.New("undecodable entry")},
	}
	coord, reg := newCoordinator(store)

	report := coord.Run(context.Background())

	assert.Equal(t, 1, report.Recovered)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "undecodable")
	assert.True(t, reg.Has("b1"))
}

func TestRunEmptyStore(t *testing.T) {
	store := &memStore{sessions: map[string]model.ActiveSession{}}
	coord, reg := newCoordinator(store)

	report := coord.Run(context.Background())

	assert.Zero(t, report.Recovered)
	assert.Zero(t, report.Expired)
	assert.Empty(t, reg.GetAll())
}

func TestLastReport(t *testing.T) {
	store := &memStore{sessions: map[string]model.ActiveSession{}}
	coord, _ := newCoordinator(store)

	assert.Nil(t, coord.LastReport())

	report := coord.Run(context.Background())
	assert.Equal(t, report, coord.LastReport())
}
