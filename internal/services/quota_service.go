package services

import (
	"context"
	"fmt"

	"notesaas/internal/models"

	"github.com/google/uuid"
)

// CanCreate decides from a tenant snapshot and its current active count
// whether one more note may be created.
func CanCreate(tenant models.Tenant, currentActiveCount int) bool {
	switch tenant.Subscription {
	case models.SubscriptionPro:
		return true
	case models.SubscriptionFree:
		return currentActiveCount < tenant.NoteLimit
	}
	return false
}

// QuotaDecision is the outcome of a quota check together with the numbers behind it.
type QuotaDecision struct {
	Allowed      bool
	CurrentCount int
	Limit        int
	Subscription models.Subscription
}

// Err returns a *QuotaExceededError for a denial and nil otherwise.
func (d *QuotaDecision) Err() error {
	if d.Allowed {
		return nil
	}
	return &QuotaExceededError{
		CurrentCount: d.CurrentCount,
		Limit:        d.Limit,
		Subscription: d.Subscription,
	}
}

// ActiveNoteCounter is the slice of the note repository the quota check needs.
type ActiveNoteCounter interface {
	CountActive(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type QuotaService interface {
	Check(ctx context.Context, tenant models.Tenant) (*QuotaDecision, error)
}

type quotaService struct {
	notes ActiveNoteCounter
}

func NewQuotaService(notes ActiveNoteCounter) QuotaService {
	return &quotaService{notes: notes}
}

// Check reads the active count and applies CanCreate. The count is not held
// across the caller's insert, so concurrent creations may overshoot the limit.
func (s *quotaService) Check(ctx context.Context, tenant models.Tenant) (*QuotaDecision, error) {
	count, err := s.notes.CountActive(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: count active notes: %w", ErrInternal, err)
	}
	return &QuotaDecision{
		Allowed:      CanCreate(tenant, count),
		CurrentCount: count,
		Limit:        tenant.NoteLimit,
		Subscription: tenant.Subscription,
	}, nil
}
