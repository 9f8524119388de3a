package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionClaims is the verified content of an access token. Not persisted.
type SessionClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login Request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Access Token Response
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID     uuid.UUID      `json:"id"`
	Email  string         `json:"email"`
	Role   Role           `json:"role"`
	Tenant TenantResponse `json:"tenant"`
}

type TenantResponse struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Subscription Subscription `json:"subscription"`
	NoteLimit    int          `json:"note_limit"`
}

func NewUserResponse(p *Principal) UserResponse {
	return UserResponse{
		ID:    p.User.ID,
		Email: p.User.Email,
		Role:  p.User.Role,
		Tenant: TenantResponse{
			ID:           p.Tenant.ID,
			Name:         p.Tenant.Name,
			Slug:         p.Tenant.Slug,
			Subscription: p.Tenant.Subscription,
			NoteLimit:    p.Tenant.NoteLimit,
		},
	}
}
