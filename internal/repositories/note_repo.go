package repositories

import (
	"context"
	"fmt"

	"notesaas/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NoteFilter selects a page of notes. A zero Limit returns every match.
type NoteFilter struct {
	Archived bool
	Limit    int
	Offset   int
}

type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error)
	List(ctx context.Context, tenantID uuid.UUID, filter NoteFilter) ([]*models.Note, error)
	Count(ctx context.Context, tenantID uuid.UUID, archived bool) (int, error)
	CountActive(ctx context.Context, tenantID uuid.UUID) (int, error)
	Update(ctx context.Context, note *models.Note) error
	SetArchived(ctx context.Context, tenantID, id uuid.UUID, archived bool) (*models.Note, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type noteRepo struct {
	db Database
}

func NewNoteRepo(db Database) NoteRepository {
	return &noteRepo{db: db}
}

const noteColumns = `
		n.id, n.tenant_id, n.created_by, n.title, n.content, n.tags, n.is_archived, n.created_at, n.updated_at,
		u.email, u.role
`

func scanNote(row pgx.Row) (*models.Note, error) {
	note := &models.Note{Author: &models.NoteAuthor{}}
	err := row.Scan(&note.ID, &note.TenantID, &note.CreatedBy, &note.Title, &note.Content, &note.Tags, &note.IsArchived,
		&note.CreatedAt, &note.UpdatedAt, &note.Author.Email, &note.Author.Role)
	if err != nil {
		return nil, err
	}
	note.Author.ID = note.CreatedBy
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

func (r *noteRepo) Create(ctx context.Context, note *models.Note) error {
	if note.Tags == nil {
		note.Tags = []string{}
	}
	query := `
		INSERT INTO notes (id, tenant_id, created_by, title, content, tags, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, note.ID, note.TenantID, note.CreatedBy, note.Title, note.Content, note.Tags, note.IsArchived).
		Scan(&note.CreatedAt, &note.UpdatedAt)
}

func (r *noteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	query := `SELECT` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.created_by
		WHERE n.tenant_id = $1 AND n.id = $2
	`
	note, err := scanNote(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return note, nil
}

func (r *noteRepo) List(ctx context.Context, tenantID uuid.UUID, filter NoteFilter) ([]*models.Note, error) {
	query := `SELECT` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.created_by
		WHERE n.tenant_id = $1 AND n.is_archived = $2
		ORDER BY n.created_at DESC
	`
	args := []interface{}{tenantID, filter.Archived}
	if filter.Limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepo) Count(ctx context.Context, tenantID uuid.UUID, archived bool) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notes WHERE tenant_id = $1 AND is_archived = $2`
	if err := r.db.QueryRow(ctx, query, tenantID, archived).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountActive is a point-in-time snapshot; it is not held across the insert that may follow it.
func (r *noteRepo) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return r.Count(ctx, tenantID, false)
}

func (r *noteRepo) Update(ctx context.Context, note *models.Note) error {
	if note.Tags == nil {
		note.Tags = []string{}
	}
	query := `
		UPDATE notes
		SET title = $3, content = $4, tags = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, note.TenantID, note.ID, note.Title, note.Content, note.Tags).Scan(&note.UpdatedAt)
	return notFound(err)
}

func (r *noteRepo) SetArchived(ctx context.Context, tenantID, id uuid.UUID, archived bool) (*models.Note, error) {
	query := `
		UPDATE notes
		SET is_archived = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, id, archived)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, tenantID, id)
}

func (r *noteRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
