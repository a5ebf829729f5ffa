package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// BroadcastChatKey is the reserved settings key holding the broadcast chat id.
const BroadcastChatKey = "hr_chat_id"

// Document is the whole persisted state. It is always loaded and saved as one unit.
type Document struct {
	Vacations       map[string][]VacationRecord
	Settings        map[string]ChatSettings
	BroadcastChatID string
	Notifications   map[string][]NotificationLogEntry
}

func NewDocument() *Document {
	return &Document{
		Vacations:     make(map[string][]VacationRecord),
		Settings:      make(map[string]ChatSettings),
		Notifications: make(map[string][]NotificationLogEntry),
	}
}

// ReplaceVacations swaps the chat's records and drops its notification log,
// whose entries referred to the previous list.
func (d *Document) ReplaceVacations(chatID string, records []VacationRecord) {
	d.Vacations[chatID] = records
	d.Notifications[chatID] = []NotificationLogEntry{}
}

func (d *Document) SetLeadDays(chatID string, days int) {
	settings := d.Settings[chatID]
	settings.NotifyDays = days
	d.Settings[chatID] = settings
}

func (d *Document) SetBroadcastChat(chatID string) {
	if _, ok := d.Settings[chatID]; !ok {
		d.Settings[chatID] = ChatSettings{}
	}

	d.BroadcastChatID = chatID
}

// ConfiguredChats returns chats with a positive lead time, sorted for stable iteration.
func (d *Document) ConfiguredChats() []string {
	chats := make([]string, 0, len(d.Settings))

	for chatID, settings := range d.Settings {
		if chatID == BroadcastChatKey || !settings.Configured() {
			continue
		}

		chats = append(chats, chatID)
	}

	sort.Strings(chats)

	return chats
}

type documentJSON struct {
	Vacations     json.RawMessage `json:"vacations"`
	Settings      json.RawMessage `json:"settings"`
	Notifications json.RawMessage `json:"notifications"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	settings := make(map[string]any, len(d.Settings)+1)
	for chatID, s := range d.Settings {
		settings[chatID] = s
	}

	if d.BroadcastChatID != "" {
		settings[BroadcastChatKey] = d.BroadcastChatID
	}

	vacations := d.Vacations
	if vacations == nil {
		vacations = map[string][]VacationRecord{}
	}

	notifications := d.Notifications
	if notifications == nil {
		notifications = map[string][]NotificationLogEntry{}
	}

	return json.Marshal(struct {
		Vacations     map[string][]VacationRecord       `json:"vacations"`
		Settings      map[string]any                    `json:"settings"`
		Notifications map[string][]NotificationLogEntry `json:"notifications"`
	}{
		Vacations:     vacations,
		Settings:      settings,
		Notifications: notifications,
	})
}

// UnmarshalJSON accepts the legacy layout where vacations or notifications were flat lists;
// those decode as empty per-chat maps.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	doc := NewDocument()

	if isObject(raw.Vacations) {
		var perChat map[string]json.RawMessage
		if err := json.Unmarshal(raw.Vacations, &perChat); err != nil {
			return err
		}

		for chatID, list := range perChat {
			var records []VacationRecord
			if err := json.Unmarshal(list, &records); err != nil {
				continue
			}

			doc.Vacations[chatID] = records
		}
	}

	if isObject(raw.Settings) {
		var perChat map[string]json.RawMessage
		if err := json.Unmarshal(raw.Settings, &perChat); err != nil {
			return err
		}

		for key, value := range perChat {
			if key == BroadcastChatKey {
				_ = json.Unmarshal(value, &doc.BroadcastChatID)
				continue
			}

			var settings ChatSettings
			if err := json.Unmarshal(value, &settings); err != nil {
				continue
			}

			doc.Settings[key] = settings
		}
	}

	if isObject(raw.Notifications) {
		var perChat map[string]json.RawMessage
		if err := json.Unmarshal(raw.Notifications, &perChat); err != nil {
			return err
		}

		for chatID, list := range perChat {
			var entries []NotificationLogEntry
			if err := json.Unmarshal(list, &entries); err != nil {
				continue
			}

			doc.Notifications[chatID] = entries
		}
	}

	*d = *doc

	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
