package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/durable"
	"github.com/nestlog/tracker-server-go/internal/registry"
)

// ExpiredSession summarizes a session that was dropped on recovery because
// it sat untouched past the expiry threshold.
type ExpiredSession struct {
	BabyID     string    `json:"babyId"`
	SessionID  string    `json:"sessionId"`
	StartTime  time.Time `json:"startTime"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Report is the outcome of one recovery run. Errors are aggregated, never
// thrown: one bad record cannot block recovery of the others.
type Report struct {
	Recovered       int              `json:"recovered"`
	Expired         int              `json:"expired"`
	ExpiredSessions []ExpiredSession `json:"expiredSessions,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
	RanAt           time.Time        `json:"ranAt"`
}

// Coordinator rebuilds the registry from the durable store at startup.
// It runs before the lifecycle service accepts calls and is the only place
// that ever expires a session.
type Coordinator struct {
	store    durable.Store
	registry *registry.Registry
	expiry   time.Duration
	nowFn    func() time.Time

	mu   sync.Mutex
	last *Report
}

func New(store durable.Store, reg *registry.Registry, expiry time.Duration) *Coordinator {
	return &Coordinator{
		store:    store,
		registry: reg,
		expiry:   expiry,
		nowFn:    time.Now,
	}
}

// Run loads persisted sessions, drops stale ones, and admits the rest.
// Babies already present in the registry are skipped, so a second run
// recovers nothing and changes nothing.
func (c *Coordinator) Run(ctx context.Context) *Report {
	now := c.nowFn()
	report := &Report{RanAt: now}

	loaded, errs := c.store.Load(ctx)
	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())
	}

	prune := len(errs) > 0
	for babyID, session := range loaded {
		age := now.Sub(session.LastUpdate)
		if age > c.expiry {
			report.Expired++
			report.ExpiredSessions = append(report.ExpiredSessions, ExpiredSession{
				BabyID:     babyID,
				SessionID:  session.ID,
				StartTime:  session.StartTime,
				LastUpdate: session.LastUpdate,
			})
			prune = true
			log.Warn().
				Str("babyId", babyID).
				Str("sessionId", session.ID).
				Dur("age", age).
				Msg("dropping stale session on recovery")
			continue
		}

		if c.registry.Has(babyID) {
			continue
		}
		c.registry.Admit(&session)
		report.Recovered++
	}

	if prune {
		// Rewrite the blob without the expired and undecodable entries.
		if err := c.store.SaveAll(ctx, c.registry.Snapshot()); err != nil {
			report.Errors = append(report.Errors, err.Error())
			log.Warn().Err(err).Msg("failed to prune session snapshot after recovery")
		}
	}

	c.mu.Lock()
	c.last = report
	c.mu.Unlock()

	log.Info().
		Int("recovered", report.Recovered).
		Int("expired", report.Expired).
		Int("errors", len(report.Errors)).
		Msg("session recovery complete")

	return report
}

// LastReport returns the most recent recovery report, or nil if recovery
// has not run yet.
func (c *Coordinator) LastReport() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
