package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Flow identifies a multi-step conversation flow.
type Flow string

// Step identifies the current position within a flow.
type Step string

const (
	FlowRegistration Flow = "registration"
	FlowBooking      Flow = "booking"

	StepLang     Step = "lang"
	StepName     Step = "name"
	StepWhatsapp Step = "whatsapp"
	StepPhone    Step = "phone"

	StepService Step = "service"
	StepDoctor  Step = "doctor"
	StepSlot    Step = "slot"
)

// ValidStep reports whether the step belongs to the flow's step set.
func (f Flow) ValidStep(s Step) bool {
	switch f {
	case FlowRegistration:
		return s == StepLang || s == StepName || s == StepWhatsapp || s == StepPhone
	case FlowBooking:
		return s == StepService || s == StepDoctor || s == StepSlot
	}
	return false
}

// User is a registered clinic patient, keyed by Telegram chat ID.
// The phone number is only ever written from a platform-verified contact
// object whose owner matches the chat ID.
type User struct {
	ChatID    int64          `db:"chat_id"`
	Name      sql.NullString `db:"name"`
	Whatsapp  sql.NullString `db:"whatsapp"`
	Phone     sql.NullString `db:"phone"`
	Lang      string         `db:"lang"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// UserUpdate describes a partial upsert of a user row. Nil fields are
// left untouched on existing rows.
type UserUpdate struct {
	ChatID   int64
	Name     *string
	Whatsapp *string
	Phone    *string
	Lang     *string
}

// StateData is the payload accumulated across the steps of a flow. It is
// stored as JSON in the conversation state row; fields are only written by
// the flow they belong to.
type StateData struct {
	Lang     string `json:"lang,omitempty"`
	Name     string `json:"name,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Service  string `json:"service,omitempty"`
	Doctor   string `json:"doctor,omitempty"`
}

// Value implements driver.Valuer, serializing the payload as JSON.
func (d StateData) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state data: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the JSON payload.
func (d *StateData) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = StateData{}
		return nil
	case string:
		if v == "" {
			*d = StateData{}
			return nil
		}
		return json.Unmarshal([]byte(v), d)
	case []byte:
		if len(v) == 0 {
			*d = StateData{}
			return nil
		}
		return json.Unmarshal(v, d)
	}
	return fmt.Errorf("unsupported state data type %T", src)
}

// ConversationState is the single active flow position of a chat.
type ConversationState struct {
	ChatID    int64     `db:"chat_id"`
	Flow      Flow      `db:"flow"`
	Step      Step      `db:"step"`
	Data      StateData `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Slot is a bookable appointment time, keyed by its timestamp string
// ("2006-01-02 15:04" in the clinic time zone).
type Slot struct {
	ID           int64         `db:"id"`
	StartsAt     string        `db:"starts_at"`
	Booked       bool          `db:"booked"`
	BookedBy     sql.NullInt64 `db:"booked_by"`
	ReminderSent bool          `db:"reminder_sent"`
}

// PendingReminder joins a booked, not-yet-reminded slot with its owner's
// contact details for reminder dispatch.
type PendingReminder struct {
	SlotID   int64          `db:"slot_id"`
	StartsAt string         `db:"starts_at"`
	ChatID   int64          `db:"chat_id"`
	Name     sql.NullString `db:"name"`
	Lang     string         `db:"lang"`
}
