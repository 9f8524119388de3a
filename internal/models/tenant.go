package models

import (
	"time"

	"github.com/google/uuid"
)

type Subscription string

const (
	SubscriptionFree Subscription = "free"
	SubscriptionPro  Subscription = "pro"
)

// UnlimitedNotes is the note limit stored for pro tenants.
const UnlimitedNotes = -1

// DefaultFreeNoteLimit is the active note quota of a freshly provisioned tenant.
const DefaultFreeNoteLimit = 3

func (s Subscription) IsValid() bool {
	switch s {
	case SubscriptionFree, SubscriptionPro:
		return true
	}
	return false
}

type Tenant struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Slug         string       `json:"slug" db:"slug"`
	Subscription Subscription `json:"subscription" db:"subscription"`
	NoteLimit    int          `json:"note_limit" db:"note_limit"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

func (t *Tenant) IsPro() bool {
	return t.Subscription == SubscriptionPro
}

// TenantUsage pairs a tenant with its current number of non-archived notes.
type TenantUsage struct {
	Tenant      Tenant `json:"tenant"`
	ActiveNotes int    `json:"active_notes"`
}
