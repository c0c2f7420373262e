package durable

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/model"
)

// Store owns the serialized bytes of all active sessions on this install.
// Implementations must treat corruption as "no prior sessions" (logged,
// never an error) and keep the serialized form additive-only so old
// readers ignore fields added later.
type Store interface {
	// Load reads the full snapshot. Entries that fail to decode are
	// skipped and reported in the returned slice; they are never fatal.
	Load(ctx context.Context) (map[string]model.ActiveSession, []error)
	// SaveAll replaces the snapshot with the given sessions.
	SaveAll(ctx context.Context, sessions map[string]model.ActiveSession) error
	// Clear removes every persisted session.
	Clear(ctx context.Context) error
}

// snapshot is the serialized blob layout. Sessions are kept as raw JSON so
// one corrupt entry cannot take the rest of the snapshot down with it.
type snapshot struct {
	Sessions map[string]json.RawMessage `json:"sessions"`
}

func encodeSnapshot(sessions map[string]model.ActiveSession) ([]byte, error) {
	snap := snapshot{Sessions: make(map[string]json.RawMessage, len(sessions))}
	for babyID, session := range sessions {
		raw, err := json.Marshal(session)
		if err != nil {
			return nil, err
		}
		snap.Sessions[babyID] = raw
	}
	return json.Marshal(snap)
}

// decodeSnapshot parses a serialized blob. A blob that is not valid JSON at
// the top level yields an empty map plus a single error; per-entry failures
// drop only that entry.
func decodeSnapshot(data []byte) (map[string]model.ActiveSession, []error) {
	sessions := make(map[string]model.ActiveSession)
	if len(data) == 0 {
		return sessions, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("session snapshot corrupted, treating as empty")
		return sessions, []error{err}
	}

	var errs []error
	for babyID, raw := range snap.Sessions {
		var session model.ActiveSession
		if err := json.Unmarshal(raw, &session); err != nil {
			log.Warn().Err(err).Str("babyId", babyID).Msg("dropping undecodable session entry")
			errs = append(errs, err)
			continue
		}
		if session.Durations == nil {
			session.Durations = make(map[model.Side]int)
		}
		sessions[babyID] = session
	}
	return sessions, errs
}
