package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/config"
	apperrors "github.com/nestlog/tracker-server-go/internal/errors"
	"github.com/nestlog/tracker-server-go/internal/model"
	"github.com/nestlog/tracker-server-go/internal/registry"
	"github.com/nestlog/tracker-server-go/internal/repository"
)

// SessionService drives the active-session state machine, one session per
// baby: None -> Active -> {Completed, Cancelled}. Every mutation writes
// through the registry; storage failures degrade (memory wins, flush
// retried later) rather than failing the operation, because losing an
// in-progress timer update is worse than a brief durability gap.
//
// The service never measures elapsed time itself. Callers supply absolute
// per-side elapsed seconds, which keeps the engine clock-agnostic and lets
// recovery-driven resumption feed persisted values back in.
type SessionService struct {
	registry *registry.Registry
	records  repository.SessionRecordRepository
	deviceID string
	nowFn    func() time.Time

	// one mutex per baby, so check-and-act sequences (conflict check on
	// start, get-insert-remove on end) stay atomic under the concurrent
	// server.
	babyMu sync.Map
}

func NewSessionService(reg *registry.Registry, records repository.SessionRecordRepository, deviceID string) *SessionService {
	return &SessionService{
		registry: reg,
		records:  records,
		deviceID: deviceID,
		nowFn:    time.Now,
	}
}

// Start creates a new active session for the baby with zero accumulated
// time. Fails with SESSION_CONFLICT when one is already active.
func (s *SessionService) Start(ctx context.Context, babyID string, sessionType model.SessionType, initialSide model.Side, notes string) (*model.ActiveSession, error) {
	if babyID == "" {
		return nil, apperrors.MissingRequired("babyId")
	}
	if err := validateSessionType(sessionType); err != nil {
		return nil, err
	}
	if err := validateSide(initialSide); err != nil {
		return nil, err
	}

	defer s.lockBaby(babyID)()

	now := s.nowFn()
	session := &model.ActiveSession{
		ID:          model.NewSessionID(babyID, now),
		BabyID:      babyID,
		Type:        sessionType,
		StartTime:   now,
		CurrentSide: initialSide,
		Durations:   make(map[model.Side]int),
		Notes:       notes,
		LastUpdate:  now,
		DeviceID:    s.deviceID,
		Active:      true,
	}

	inserted, err := s.registry.Insert(ctx, session)
	if !inserted {
		return nil, apperrors.SessionConflict(babyID)
	}
	if err != nil {
		log.Warn().Err(err).Str("babyId", babyID).Msg("session started without durable flush")
	}

	log.Info().
		Str("babyId", babyID).
		Str("sessionId", session.ID).
		Str("type", string(sessionType)).
		Str("side", string(initialSide)).
		Msg("session started")

	return session, nil
}

// Update merges a partial mutation into the baby's active session. Per-side
// durations are clamped to max(current, supplied) so a replayed or stale
// update can never roll a timer backwards.
func (s *SessionService) Update(ctx context.Context, babyID string, params model.UpdateSessionParams) (*model.ActiveSession, error) {
	defer s.lockBaby(babyID)()

	session, ok := s.registry.Get(babyID)
	if !ok {
		return nil, apperrors.SessionNotFound(babyID)
	}

	if params.Side != nil {
		if err := validateSide(*params.Side); err != nil {
			return nil, err
		}
		session.CurrentSide = *params.Side
	}
	for side, secs := range params.Durations {
		if err := validateSide(side); err != nil {
			return nil, err
		}
		if secs < 0 {
			return nil, apperrors.InvalidInput("durations", "elapsed seconds must not be negative")
		}
		if secs > session.Durations[side] {
			session.Durations[side] = secs
		}
	}
	if params.Notes != nil {
		session.Notes = *params.Notes
	}
	session.LastUpdate = s.nowFn()

	if err := s.registry.Upsert(ctx, session); err != nil {
		log.Warn().Err(err).Str("babyId", babyID).Msg("session updated without durable flush")
	}

	return session, nil
}

// End finalizes the baby's active session: dominant side and total are
// computed, the record is handed to the remote store, and only after a
// successful insert is the local entry removed. A failed insert surfaces
// as REMOTE_COMMIT_FAILED with the local session intact for retry.
func (s *SessionService) End(ctx context.Context, babyID string) (*model.SessionRecord, error) {
	defer s.lockBaby(babyID)()

	session, ok := s.registry.Get(babyID)
	if !ok {
		return nil, apperrors.SessionNotFound(babyID)
	}

	endTime := s.nowFn()
	insertCtx, cancel := context.WithTimeout(ctx, config.RemoteCommitTimeout)
	defer cancel()
	record, err := s.records.Insert(insertCtx, model.CreateSessionRecordParams{
		BabyID:       babyID,
		Type:         session.Type,
		StartTime:    session.StartTime,
		EndTime:      endTime,
		LeftSeconds:  session.Duration(model.SideLeft),
		RightSeconds: session.Duration(model.SideRight),
		TotalSeconds: session.TotalDuration(),
		Dominant:     session.Dominant(),
		Notes:        session.Notes,
		DeviceID:     session.DeviceID,
	})
	if err != nil {
		log.Error().Err(err).Str("babyId", babyID).Str("sessionId", session.ID).Msg("remote commit failed, keeping local session")
		return nil, apperrors.RemoteCommit(err)
	}

	if err := s.registry.Remove(ctx, babyID); err != nil {
		log.Warn().Err(err).Str("babyId", babyID).Msg("session ended without durable flush")
	}

	log.Info().
		Str("babyId", babyID).
		Str("recordId", record.ID).
		Str("dominant", string(record.Dominant)).
		Int("totalSeconds", record.TotalSeconds).
		Msg("session ended")

	return record, nil
}

// Cancel discards the baby's active session. No remote record is produced
// and the removal is irreversible.
func (s *SessionService) Cancel(ctx context.Context, babyID string) error {
	defer s.lockBaby(babyID)()

	session, ok := s.registry.Get(babyID)
	if !ok {
		return apperrors.SessionNotFound(babyID)
	}

	if err := s.registry.Remove(ctx, babyID); err != nil {
		log.Warn().Err(err).Str("babyId", babyID).Msg("session cancelled without durable flush")
	}

	log.Info().Str("babyId", babyID).Str("sessionId", session.ID).Msg("session cancelled")
	return nil
}

// Get returns the baby's active session, or SESSION_NOT_FOUND.
func (s *SessionService) Get(babyID string) (*model.ActiveSession, error) {
	session, ok := s.registry.Get(babyID)
	if !ok {
		return nil, apperrors.SessionNotFound(babyID)
	}
	return session, nil
}

// ElapsedDisplay renders the wall-clock time since session start for the
// timer UI: "M:SS" under an hour, "H:MM" from an hour up. Read-only.
func (s *SessionService) ElapsedDisplay(babyID string, now time.Time) (string, error) {
	session, ok := s.registry.Get(babyID)
	if !ok {
		return "", apperrors.SessionNotFound(babyID)
	}

	elapsed := now.Sub(session.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}

	if elapsed < time.Hour {
		minutes := int(elapsed.Minutes())
		seconds := int(elapsed.Seconds()) % 60
		return fmt.Sprintf("%d:%02d", minutes, seconds), nil
	}

	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60
	return fmt.Sprintf("%d:%02d", hours, minutes), nil
}

// History lists the baby's finalized records from the remote store,
// newest first.
func (s *SessionService) History(ctx context.Context, babyID string, limit, offset int) ([]model.SessionRecord, error) {
	if babyID == "" {
		return nil, apperrors.MissingRequired("babyId")
	}
	records, err := s.records.FindByBabyID(ctx, babyID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return records, nil
}

// ClearAll wipes every locally persisted session. Sign-out cleanup only,
// never called implicitly.
func (s *SessionService) ClearAll(ctx context.Context) error {
	if err := s.registry.Clear(ctx); err != nil {
		return err
	}
	log.Info().Msg("cleared all local session data")
	return nil
}

// lockBaby acquires the baby's mutation lock and returns its unlock func.
func (s *SessionService) lockBaby(babyID string) func() {
	v, _ := s.babyMu.LoadOrStore(babyID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func validateSessionType(t model.SessionType) error {
	switch t {
	case model.SessionTypeNursing, model.SessionTypePumping:
		return nil
	default:
		return apperrors.InvalidInput("type", fmt.Sprintf("unknown session type %q", t))
	}
}

func validateSide(side model.Side) error {
	switch side {
	case model.SideLeft, model.SideRight:
		return nil
	default:
		return apperrors.InvalidInput("side", fmt.Sprintf("unknown side %q", side))
	}
}
