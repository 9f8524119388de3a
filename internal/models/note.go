package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	TenantID   uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	CreatedBy  uuid.UUID   `json:"-" db:"created_by"`
	Title      string      `json:"title" db:"title"`
	Content    string      `json:"content" db:"content"`
	Tags       []string    `json:"tags" db:"tags"`
	IsArchived bool        `json:"is_archived" db:"is_archived"`
	Author     *NoteAuthor `json:"created_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// NoteAuthor is the subset of the creating user exposed alongside a note.
type NoteAuthor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

type NoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalNotes  int  `json:"total_notes"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

type NoteList struct {
	Notes      []*Note    `json:"notes"`
	Pagination Pagination `json:"pagination"`
}
