package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus tracks where a contact sits in the outreach cycle.
type ContactStatus string

const (
	StatusPending       ContactStatus = "pending"
	StatusMessageSent   ContactStatus = "message_sent"
	StatusAwaitingReply ContactStatus = "awaiting_reply"
	StatusReplied       ContactStatus = "replied"
	StatusOther         ContactStatus = "other"
)

// ValidStatus reports whether s is one of the five known statuses.
func ValidStatus(s ContactStatus) bool {
	switch s {
	case StatusPending, StatusMessageSent, StatusAwaitingReply, StatusReplied, StatusOther:
		return true
	}
	return false
}

// Label returns the human-readable (pt-BR) label used on spreadsheets.
func (s ContactStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusMessageSent:
		return "Mensagem enviada"
	case StatusAwaitingReply:
		return "Aguardando resposta"
	case StatusReplied:
		return "Respondido"
	default:
		return "Outro"
	}
}

// Contact is one entry in the managed collection.
type Contact struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Phone  string        `json:"phone"` // canonical digit-only international form
	Status ContactStatus `json:"status"`

	// CustomMessage overrides the global message template for this contact.
	CustomMessage string `json:"custom_message,omitempty"`

	// ExtraInfo carries spreadsheet columns that are neither name nor phone,
	// in original column order, keyed by the case-preserved header text.
	ExtraInfo []Field `json:"extra_info,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContact creates a contact with status pending. The phone is expected to
// be already normalized.
func NewContact(id uuid.UUID, name, phone string) *Contact {
	now := time.Now().UTC()
	return &Contact{
		ID:        id,
		Name:      name,
		Phone:     phone,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy detached from the stored record, safe to hand to
// callers outside the collection's lock.
func (c *Contact) Clone() *Contact {
	out := *c
	if c.ExtraInfo != nil {
		out.ExtraInfo = make([]Field, len(c.ExtraInfo))
		copy(out.ExtraInfo, c.ExtraInfo)
	}
	return &out
}

// ExtraField returns the side field with the given header key, if present.
func (c *Contact) ExtraField(key string) (Field, bool) {
	for _, f := range c.ExtraInfo {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Settings are the two global knobs stored next to the collection.
type Settings struct {
	MessageTemplate      string `json:"message_template"`
	FollowUpDelaySeconds int    `json:"follow_up_delay_seconds"`
}
