package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

func TestNewVacationRecord_EndDate(t *testing.T) {
	record := models.NewVacationRecord("Иванов Иван", "Филиал", 14, models.NewDate(2024, time.March, 1))

	assert.Equal(t, models.NewDate(2024, time.March, 15), record.EndDate)
	assert.Equal(t, "2024-03-15", record.EndDate.String())
}

func TestNewVacationRecord_NegativeDaysClamped(t *testing.T) {
	record := models.NewVacationRecord("Иванов Иван", "", -3, models.NewDate(2024, time.March, 1))

	assert.Equal(t, 0, record.DurationDays)
	assert.Equal(t, record.StartDate, record.EndDate)
}

func TestDate_DaysUntil(t *testing.T) {
	today := models.NewDate(2024, time.June, 1)

	assert.Equal(t, 4, today.DaysUntil(models.NewDate(2024, time.June, 5)))
	assert.Equal(t, -2, today.DaysUntil(models.NewDate(2024, time.May, 30)))
	assert.Equal(t, 0, today.DaysUntil(today))
}

func TestVacationRecord_KeyIsStable(t *testing.T) {
	start := models.NewDate(2024, time.July, 1)
	a := models.NewVacationRecord("Петров", "ООО Ромашка", 7, start)
	b := models.NewVacationRecord("Петров", "ООО Ромашка", 7, start)
	c := models.NewVacationRecord("Петров", "ООО Ромашка", 7, start.AddDays(1))

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestNotificationLogEntry_Matches(t *testing.T) {
	record := models.NewVacationRecord("Петров", "", 7, models.NewDate(2024, time.July, 1))

	keyed := models.NotificationLogEntry{VacationID: 5, VacationKey: record.Key()}
	assert.True(t, keyed.Matches(0, record))

	legacy := models.NotificationLogEntry{VacationID: 2}
	assert.True(t, legacy.Matches(2, record))
	assert.False(t, legacy.Matches(3, record))
}

func TestDocument_UnmarshalPersistedShape(t *testing.T) {
	raw := `{
		"vacations": {"100": [{"fio": "Иванов", "org": "ИТ", "days": 14, "start_date": "2024-03-01", "end_date": "2024-03-15"}]},
		"settings": {"100": {"notify_days": 7}, "hr_chat_id": "200"},
		"notifications": {"100": [{"vacation_id": 0, "sent_at": "2024-02-25"}]}
	}`

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	require.Len(t, doc.Vacations["100"], 1)
	assert.Equal(t, "Иванов", doc.Vacations["100"][0].FullName)
	assert.Equal(t, 7, doc.Settings["100"].NotifyDays)
	assert.Equal(t, "200", doc.BroadcastChatID)
	assert.NotContains(t, doc.Settings, models.BroadcastChatKey)
	require.Len(t, doc.Notifications["100"], 1)
	assert.Equal(t, models.NewDate(2024, time.February, 25), doc.Notifications["100"][0].SentAt)
}

func TestDocument_UnmarshalLegacyLists(t *testing.T) {
	raw := `{"vacations": [{"fio": "x"}], "settings": {}, "notifications": [{"vacation_id": 1}]}`

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.NotNil(t, doc.Vacations)
	assert.Empty(t, doc.Vacations)
	assert.NotNil(t, doc.Notifications)
	assert.Empty(t, doc.Notifications)
}

func TestDocument_MarshalKeepsBroadcastUnderSettings(t *testing.T) {
	doc := models.NewDocument()
	doc.SetBroadcastChat("300")

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var generic map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))

	assert.Equal(t, "300", generic["settings"][models.BroadcastChatKey])
	assert.Contains(t, generic["settings"], "300")
}

func TestDocument_ConfiguredChats(t *testing.T) {
	doc := models.NewDocument()
	doc.SetLeadDays("b", 3)
	doc.SetLeadDays("a", 5)
	doc.SetBroadcastChat("c")

	assert.Equal(t, []string{"a", "b"}, doc.ConfiguredChats())
}

func TestDocument_ReplaceVacationsResetsLog(t *testing.T) {
	doc := models.NewDocument()
	doc.Notifications["1"] = []models.NotificationLogEntry{{VacationID: 0}}

	doc.ReplaceVacations("1", []models.VacationRecord{})

	assert.Empty(t, doc.Notifications["1"])
}
