package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
)

// memStore backs the three repositories with maps so requests can run
// through the real services.
type memStore struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*models.Tenant
	users   map[uuid.UUID]*models.User
	notes   map[uuid.UUID]*models.Note
	clock   time.Time
}

func newMemStore() *memStore {
	return &memStore{
		tenants: map[uuid.UUID]*models.Tenant{},
		users:   map[uuid.UUID]*models.User{},
		notes:   map[uuid.UUID]*models.Note{},
		clock:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memTenants struct{ *memStore }
type memUsers struct{ *memStore }
type memNotes struct{ *memStore }

func (r memTenants) Create(_ context.Context, t *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tenants {
		if existing.Slug == t.Slug {
			return repositories.ErrDuplicate
		}
	}
	t.CreatedAt, t.UpdatedAt = r.tick(), r.clock
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r memTenants) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTenants) GetBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memTenants) UpgradeToPro(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok || t.Subscription != models.SubscriptionFree {
		return nil, repositories.ErrNotFound
	}
	t.Subscription = models.SubscriptionPro
	t.NoteLimit = models.UnlimitedNotes
	t.UpdatedAt = r.tick()
	cp := *t
	return &cp, nil
}

func (r memTenants) ListUsage(_ context.Context, sub models.Subscription) ([]models.TenantUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TenantUsage
	for _, t := range r.tenants {
		if t.Subscription != sub {
			continue
		}
		usage := models.TenantUsage{Tenant: *t}
		for _, n := range r.notes {
			if n.TenantID == t.ID && !n.IsArchived {
				usage.ActiveNotes++
			}
		}
		out = append(out, usage)
	}
	return out, nil
}

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.CreatedAt, u.UpdatedAt = r.tick(), r.clock
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) withTenant(u *models.User) *models.UserWithTenant {
	return &models.UserWithTenant{User: *u, Tenant: *r.tenants[u.TenantID]}
}

func (r memUsers) FindByIDWithTenant(_ context.Context, id uuid.UUID) (*models.UserWithTenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.withTenant(u), nil
}

func (r memUsers) FindByEmailWithTenant(_ context.Context, email string) (*models.UserWithTenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return r.withTenant(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memUsers) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.User{}
	for _, u := range r.users {
		if u.TenantID == tenantID {
			cp := *u
			cp.PasswordHash = ""
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memUsers) CountActiveByTenant(_ context.Context, tenantID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.TenantID == tenantID && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r memUsers) SetActive(_ context.Context, tenantID, id uuid.UUID, active bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	u.IsActive = active
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (r memNotes) Create(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.CreatedAt, n.UpdatedAt = r.tick(), r.clock
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r memNotes) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r memNotes) List(_ context.Context, tenantID uuid.UUID, filter repositories.NoteFilter) ([]*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Note{}
	for _, n := range r.notes {
		if n.TenantID == tenantID && n.IsArchived == filter.Archived {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 {
		if filter.Offset >= len(out) {
			return []*models.Note{}, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[filter.Offset:end]
	}
	return out, nil
}

func (r memNotes) Count(_ context.Context, tenantID uuid.UUID, archived bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := 0
	for _, n := range r.notes {
		if n.TenantID == tenantID && n.IsArchived == archived {
			c++
		}
	}
	return c, nil
}

func (r memNotes) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return r.Count(ctx, tenantID, false)
}

func (r memNotes) Update(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.notes[n.ID]
	if !ok || existing.TenantID != n.TenantID {
		return repositories.ErrNotFound
	}
	n.UpdatedAt = r.tick()
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r memNotes) SetArchived(_ context.Context, tenantID, id uuid.UUID, archived bool) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	n.IsArchived = archived
	n.UpdatedAt = r.tick()
	cp := *n
	return &cp, nil
}

func (r memNotes) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}
