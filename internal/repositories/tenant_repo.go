package repositories

import (
	"context"
	"fmt"

	"notesaas/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpgradeToPro(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListUsage(ctx context.Context, subscription models.Subscription) ([]models.TenantUsage, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, subscription, note_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, tenant.ID, tenant.Name, tenant.Slug, tenant.Subscription, tenant.NoteLimit).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return duplicate(err)
	}
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, slug, subscription, note_limit, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.Subscription, &tenant.NoteLimit, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return tenant, nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, slug, subscription, note_limit, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`
	err := r.db.QueryRow(ctx, query, slug).Scan(&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.Subscription, &tenant.NoteLimit, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return tenant, nil
}

// UpgradeToPro moves a free tenant to the pro plan in a single statement.
// ErrNotFound is returned when no free tenant with that id exists.
func (r *tenantRepo) UpgradeToPro(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		UPDATE tenants
		SET subscription = $2, note_limit = $3, updated_at = NOW()
		WHERE id = $1 AND subscription = $4
		RETURNING id, name, slug, subscription, note_limit, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, id, models.SubscriptionPro, models.UnlimitedNotes, models.SubscriptionFree).
		Scan(&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.Subscription, &tenant.NoteLimit, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return tenant, nil
}

func (r *tenantRepo) ListUsage(ctx context.Context, subscription models.Subscription) ([]models.TenantUsage, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.subscription, t.note_limit, t.created_at, t.updated_at,
		       COUNT(n.id) FILTER (WHERE n.is_archived = false) AS active_notes
		FROM tenants t
		LEFT JOIN notes n ON n.tenant_id = t.id
		WHERE t.subscription = $1
		GROUP BY t.id
		ORDER BY t.slug
	`
	rows, err := r.db.Query(ctx, query, subscription)
	if err != nil {
		return nil, fmt.Errorf("list tenant usage: %w", err)
	}
	defer rows.Close()

	var usage []models.TenantUsage
	for rows.Next() {
		var u models.TenantUsage
		t := &u.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Subscription, &t.NoteLimit, &t.CreatedAt, &t.UpdatedAt, &u.ActiveNotes); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
