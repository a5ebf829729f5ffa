// Package reminder decides which vacations need a reminder today and drives the daily pass.
package reminder

import (
	"sort"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

const DefaultUpcomingLimit = 5

// DueReminder is a record selected for today's pass together with its position in the chat list.
type DueReminder struct {
	Index    int
	Record   models.VacationRecord
	DaysLeft int
}

// Due returns records starting within [today, today+leadDays] that have no log entry for today.
// Records sharing a key are reminded once.
func Due(records []models.VacationRecord, log []models.NotificationLogEntry, leadDays int, today models.Date) []DueReminder {
	if leadDays <= 0 {
		return nil
	}

	sentKeys := make(map[string]struct{})
	sentIndexes := make(map[int]struct{})

	for _, entry := range log {
		if !entry.SentAt.Equal(today.Time) {
			continue
		}

		if entry.VacationKey != "" {
			sentKeys[entry.VacationKey] = struct{}{}
		} else {
			sentIndexes[entry.VacationID] = struct{}{}
		}
	}

	var due []DueReminder

	for i, record := range records {
		daysLeft := today.DaysUntil(record.StartDate)
		if daysLeft < 0 || daysLeft > leadDays {
			continue
		}

		key := record.Key()

		if _, ok := sentKeys[key]; ok {
			continue
		}

		if _, ok := sentIndexes[i]; ok {
			continue
		}

		sentKeys[key] = struct{}{}

		due = append(due, DueReminder{Index: i, Record: record, DaysLeft: daysLeft})
	}

	return due
}

type UpcomingReminder struct {
	NotifyDate models.Date
	Record     models.VacationRecord
}

// Upcoming lists the nearest reminder dates (start minus lead days) that are not in the past.
func Upcoming(records []models.VacationRecord, leadDays int, today models.Date, limit int) []UpcomingReminder {
	upcoming := make([]UpcomingReminder, 0, len(records))

	for _, record := range records {
		notifyDate := record.StartDate.AddDays(-leadDays)
		if notifyDate.Before(today.Time) {
			continue
		}

		upcoming = append(upcoming, UpcomingReminder{NotifyDate: notifyDate, Record: record})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NotifyDate.Before(upcoming[j].NotifyDate.Time)
	})

	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}

	return upcoming
}
