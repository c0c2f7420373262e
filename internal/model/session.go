package model

import (
	"fmt"
	"time"
)

// ActiveSession is the local, mutable representation of an in-progress
// nursing or pumping session. It lives in the registry and the durable
// blob until the session is ended or cancelled; the remote store never
// sees it.
type ActiveSession struct {
	ID          string       `json:"id"`
	BabyID      string       `json:"babyId"`
	Type        SessionType  `json:"type"`
	StartTime   time.Time    `json:"startTime"`
	CurrentSide Side         `json:"currentSide"`
	Durations   map[Side]int `json:"durations"`
	Notes       string       `json:"notes,omitempty"`
	LastUpdate  time.Time    `json:"lastUpdate"`
	DeviceID    string       `json:"deviceId,omitempty"`
	Active      bool         `json:"isActive"`
}

// NewSessionID derives the session identifier from the baby and the start
// instant. Two sessions for the same baby cannot coexist, so this is unique.
func NewSessionID(babyID string, startTime time.Time) string {
	return fmt.Sprintf("%s-%d", babyID, startTime.UnixMilli())
}

// Duration returns the accumulated seconds for one side.
func (s *ActiveSession) Duration(side Side) int {
	return s.Durations[side]
}

// TotalDuration is the sum of accumulated seconds across all sides.
func (s *ActiveSession) TotalDuration() int {
	total := 0
	for _, secs := range s.Durations {
		total += secs
	}
	return total
}

// Dominant classifies which sides accumulated any time.
func (s *ActiveSession) Dominant() DominantSide {
	left := s.Durations[SideLeft] > 0
	right := s.Durations[SideRight] > 0
	switch {
	case left && right:
		return DominantBoth
	case left:
		return DominantLeft
	case right:
		return DominantRight
	default:
		return DominantNone
	}
}

// Clone returns a deep copy so registry callers cannot mutate shared state.
func (s *ActiveSession) Clone() *ActiveSession {
	c := *s
	c.Durations = make(map[Side]int, len(s.Durations))
	for side, secs := range s.Durations {
		c.Durations[side] = secs
	}
	return &c
}

// UpdateSessionParams carries a partial mutation of an active session.
// Durations are absolute elapsed seconds per side, supplied by the caller
// (the timer UI, or recovery-driven resumption); nil fields are left as-is.
type UpdateSessionParams struct {
	Side      *Side
	Durations map[Side]int
	Notes     *string
}

// SessionRecord is the immutable remote representation created when a
// session ends. Owned by the remote store after insertion.
type SessionRecord struct {
	ID           string       `db:"id" json:"id"`
	BabyID       string       `db:"baby_id" json:"babyId"`
	Type         SessionType  `db:"type" json:"type"`
	StartTime    time.Time    `db:"start_time" json:"startTime"`
	EndTime      time.Time    `db:"end_time" json:"endTime"`
	LeftSeconds  int          `db:"left_seconds" json:"leftSeconds"`
	RightSeconds int          `db:"right_seconds" json:"rightSeconds"`
	TotalSeconds int          `db:"total_seconds" json:"totalSeconds"`
	Dominant     DominantSide `db:"dominant_side" json:"dominantSide"`
	Notes        string       `db:"notes" json:"notes,omitempty"`
	DeviceID     string       `db:"device_id" json:"deviceId,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

type CreateSessionRecordParams struct {
	BabyID       string
	Type         SessionType
	StartTime    time.Time
	EndTime      time.Time
	LeftSeconds  int
	RightSeconds int
	TotalSeconds int
	Dominant     DominantSide
	Notes        string
	DeviceID     string
}
