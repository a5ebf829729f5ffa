package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var recordNamespace = uuid.MustParse("5b1f4c52-8d0e-4f0a-9a43-6f2a1c7e9d10")

// VacationRecord is one roster row. Records are immutable once extracted.
type VacationRecord struct {
	FullName     string `json:"fio"`
	Organization string `json:"org"`
	DurationDays int    `json:"days"`
	StartDate    Date   `json:"start_date"`
	EndDate      Date   `json:"end_date"`
}

func NewVacationRecord(fullName, organization string, days int, start Date) VacationRecord {
	if days < 0 {
		days = 0
	}

	return VacationRecord{
		FullName:     fullName,
		Organization: organization,
		DurationDays: days,
		StartDate:    start,
		EndDate:      start.AddDays(days),
	}
}

// Key identifies the record independently of its position in the chat's list.
// Rows with identical name, organization, start and duration share a key.
func (r VacationRecord) Key() string {
	parts := []string{
		strings.ToLower(r.FullName),
		strings.ToLower(r.Organization),
		r.StartDate.String(),
		strconv.Itoa(r.DurationDays),
	}

	return uuid.NewSHA1(recordNamespace, []byte(strings.Join(parts, "|"))).String()
}

type ChatSettings struct {
	NotifyDays int `json:"notify_days,omitempty"`
}

func (s ChatSettings) Configured() bool {
	return s.NotifyDays > 0
}

type NotificationLogEntry struct {
	VacationID  int    `json:"vacation_id"`
	VacationKey string `json:"vacation_key,omitempty"`
	SentAt      Date   `json:"sent_at"`
}

// Matches reports whether the entry refers to the record at index.
// Entries written before keys existed fall back to the index.
func (e NotificationLogEntry) Matches(index int, record VacationRecord) bool {
	if e.VacationKey != "" {
		return e.VacationKey == record.Key()
	}

	return e.VacationID == index
}
