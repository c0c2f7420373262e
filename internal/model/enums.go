package model

type SessionType string

const (
	SessionTypeNursing SessionType = "nursing"
	SessionTypePumping SessionType = "pumping"
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// DominantSide classifies a finished session by which sides saw any time.
type DominantSide string

const (
	DominantLeft  DominantSide = "left"
	DominantRight DominantSide = "right"
	DominantBoth  DominantSide = "both"
	// DominantNone is used when a session ends with zero time on both sides.
	DominantNone DominantSide = ""
)

type EventType string

const (
	EventTypeNursing EventType = "nursing"
	EventTypeBottle  EventType = "bottle"
	EventTypePumping EventType = "pumping"
	EventTypeSolids  EventType = "solids"
	EventTypeDiaper  EventType = "diaper"
	EventTypeSleep   EventType = "sleep"
)
