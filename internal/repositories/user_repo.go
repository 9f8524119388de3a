package repositories

import (
	"context"
	"fmt"
	"strings"

	"notesaas/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByIDWithTenant(ctx context.Context, id uuid.UUID) (*models.UserWithTenant, error)
	FindByEmailWithTenant(ctx context.Context, email string) (*models.UserWithTenant, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error)
	CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
	SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (*models.User, error)
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

const userWithTenantColumns = `
		u.id, u.tenant_id, u.email, u.password_hash, u.role, u.is_active, u.created_at, u.updated_at,
		t.id, t.name, t.slug, t.subscription, t.note_limit, t.created_at, t.updated_at
`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.TenantID, strings.ToLower(user.Email), user.PasswordHash, user.Role, user.IsActive).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return duplicate(err)
	}
	return nil
}

func (r *userRepo) FindByIDWithTenant(ctx context.Context, id uuid.UUID) (*models.UserWithTenant, error) {
	query := `SELECT` + userWithTenantColumns + `
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE u.id = $1
	`
	return r.findOne(ctx, query, id)
}

func (r *userRepo) FindByEmailWithTenant(ctx context.Context, email string) (*models.UserWithTenant, error) {
	query := `SELECT` + userWithTenantColumns + `
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE u.email = $1
	`
	return r.findOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepo) findOne(ctx context.Context, query string, arg interface{}) (*models.UserWithTenant, error) {
	uwt := &models.UserWithTenant{}
	u, t := &uwt.User, &uwt.Tenant
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&t.ID, &t.Name, &t.Slug, &t.Subscription, &t.NoteLimit, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return uwt, nil
}

func (r *userRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	query := `
		SELECT id, tenant_id, email, role, is_active, created_at, updated_at
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.TenantID, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND is_active = true`
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepo) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (*models.User, error) {
	user := &models.User{}
	query := `
		UPDATE users
		SET is_active = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING id, tenant_id, email, role, is_active, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, tenantID, id, active).
		Scan(&user.ID, &user.TenantID, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}
