package model

import "time"

// Event is a logged care event as returned by the remote store. Amount is
// present for bottle and pumping events (milliliters) and nil otherwise.
type Event struct {
	ID         string    `db:"id" json:"id"`
	BabyID     string    `db:"baby_id" json:"babyId"`
	Type       EventType `db:"type" json:"type"`
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
	Amount     *float64  `db:"amount" json:"amount,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ScheduleSettings is the per-baby feeding schedule configuration held by
// the remote store. IncludePumping controls whether pumping events count
// toward the next-feeding computation.
type ScheduleSettings struct {
	BabyID         string    `db:"baby_id" json:"babyId"`
	IntervalHours  float64   `db:"interval_hours" json:"intervalHours"`
	IncludePumping bool      `db:"include_pumping" json:"includePumping"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
