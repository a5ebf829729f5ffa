package models

type EventType int

const (
	EventNewMessage EventType = iota
	EventButtonClick
)

// Event is a transport-neutral incoming update.
type Event struct {
	Type         EventType
	ChatID       string
	Text         string
	FileID       string
	FileName     string
	CallbackData string
	QueryID      string
}

type Button struct {
	Text         string
	CallbackData string
}

// Keyboard is a set of button rows attached to a reply.
type Keyboard [][]Button

type Reply struct {
	Text     string
	Keyboard Keyboard
}

type Reminder struct {
	ChatID   string
	Record   VacationRecord
	DaysLeft int
	Date     Date
}
