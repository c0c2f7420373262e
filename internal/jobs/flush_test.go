package jobs

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

type flakyStore struct {
	failSaves bool
	saved     map[string]model.ActiveSession
}

func (s *flakyStore) Load(ctx context.Context) (map[string]model.ActiveSession, []error) {
	return map[string]model.ActiveSession{}, nil
}

func (s *flakyStore) SaveAll(ctx context.Context, sessions map[string]model.ActiveSession) error {
	if s.failSaves {
		return errors.New("disk full")
	}
	s.saved = make(map[string]model.ActiveSession, len(sessions))
	for k, v := range sessions {
		s.saved[k] = v
	}
	return nil
}

func (s *flakyStore) Clear(ctx context.Context) error {
	return nil
}

func TestFlushRecoversMissedWrite(t *testing.T) {
	store := &flakyStore{failSaves: true}
	reg := registry.New(store)

	session := &model.ActiveSession{BabyID: "b1", Durations: map[model.Side]int{}}
	require.Error(t, reg.Upsert(context.Background(), session))
	require.True(t, reg.Dirty())

	store.failSaves = false
	job := NewFlushJob(reg, time.Hour)
	job.flush()

	assert.False(t, reg.Dirty())
	assert.Contains(t, store.saved, "b1")
}

func TestFlushNoOpWhenClean(t *testing.T) {
	store := &flakyStore{}
	reg := registry.New(store)

	job := NewFlushJob(reg, time.Hour)
	job.flush()

	assert.False(t, reg.Dirty())
}

func TestStartStop(t *testing.T) {
	store := &flakyStore{}
	reg := registry.New(store)

	job := NewFlushJob(reg, 10*time.Millisecond)
	job.Start()
	time.Sleep(30 * time.Millisecond)
	job.Stop()
}
