package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/registry"
)

// FlushJob periodically re-attempts durable flushes that failed during a
// mutation. It never expires or mutates sessions; startup recovery is the
// only place sessions are dropped.
type FlushJob struct {
	registry *registry.Registry
	interval time.Duration
	done     chan struct{}
}

func NewFlushJob(reg *registry.Registry, interval time.Duration) *FlushJob {
	return &FlushJob{
		registry: reg,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *FlushJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("flush retry job started")
}

func (j *FlushJob) Stop() {
	close(j.done)
	log.Info().Msg("flush retry job stopped")
}

func (j *FlushJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.flush()
		}
	}
}

func (j *FlushJob) flush() {
	if !j.registry.Dirty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := j.registry.RetryFlush(ctx); err != nil {
		log.Warn().Err(err).Msg("flush retry failed, will try again")
		return
	}
	log.Info().Msg("recovered from missed durable flush")
}
