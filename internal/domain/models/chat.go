package models

type ChatState int

const (
	StateIdle ChatState = iota
	StateAwaitingLeadDays
)

func (s ChatState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingLeadDays:
		return "awaiting_lead_days"
	default:
		return "unknown"
	}
}
