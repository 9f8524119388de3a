package services

import (
	"context"
	"errors"
	"strings"

	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*limit well inside a Postgres bigint OFFSET.
	MaxPage         = 1_000_000
	maxTitleLength  = 200
	maxContentBytes = 10000
)

// NoteService is tenant-scoped note CRUD. Every call is bounded by the
// principal's tenant id; a note of another tenant is reported as not found.
type NoteService interface {
	Create(ctx context.Context, principal *models.Principal, req *models.NoteRequest) (*models.Note, error)
	Get(ctx context.Context, principal *models.Principal, id uuid.UUID) (*models.Note, error)
	List(ctx context.Context, principal *models.Principal, page, limit int, archived bool) (*models.NoteList, error)
	Update(ctx context.Context, principal *models.Principal, id uuid.UUID, req *models.NoteRequest) (*models.Note, error)
	Delete(ctx context.Context, principal *models.Principal, id uuid.UUID) error
	ToggleArchive(ctx context.Context, principal *models.Principal, id uuid.UUID) (*models.Note, error)
}

type noteService struct {
	noteRepo repositories.NoteRepository
	quota    QuotaService
}

func NewNoteService(noteRepo repositories.NoteRepository, quota QuotaService) NoteService {
	return &noteService{noteRepo: noteRepo, quota: quota}
}

func validateNote(req *models.NoteRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return newValidationError("note", "title and content are required")
	}
	if len(req.Title) > maxTitleLength {
		return newValidationError("title", "cannot exceed 200 characters")
	}
	if len(req.Content) > maxContentBytes {
		return newValidationError("content", "cannot exceed 10000 characters")
	}
	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	req.Tags = tags
	return nil
}

func (s *noteService) Create(ctx context.Context, principal *models.Principal, req *models.NoteRequest) (*models.Note, error) {
	if err := validateNote(req); err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:        uuid.New(),
		TenantID:  principal.Tenant.ID,
		CreatedBy: principal.User.ID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Author: &models.NoteAuthor{
			ID:    principal.User.ID,
			Email: principal.User.Email,
			Role:  principal.User.Role,
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *noteService) Get(ctx context.Context, principal *models.Principal, id uuid.UUID) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, principal.Tenant.ID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	return note, err
}

func (s *noteService) List(ctx context.Context, principal *models.Principal, page, limit int, archived bool) (*models.NoteList, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	total, err := s.noteRepo.Count(ctx, principal.Tenant.ID, archived)
	if err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.List(ctx, principal.Tenant.ID, repositories.NoteFilter{
		Archived: archived,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &models.NoteList{
		Notes: notes,
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalNotes:  total,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

func (s *noteService) Update(ctx context.Context, principal *models.Principal, id uuid.UUID, req *models.NoteRequest) (*models.Note, error) {
	if err := validateNote(req); err != nil {
		return nil, err
	}
	note, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	note.Title = req.Title
	note.Content = req.Content
	note.Tags = req.Tags
	if err := s.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, principal *models.Principal, id uuid.UUID) error {
	err := s.noteRepo.Delete(ctx, principal.Tenant.ID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNoteNotFound
	}
	return err
}

func (s *noteService) ToggleArchive(ctx context.Context, principal *models.Principal, id uuid.UUID) (*models.Note, error) {
	note, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	// restoring a note makes it active again, so it counts against the quota
	if note.IsArchived {
		decision, err := s.quota.Check(ctx, principal.Tenant)
		if err != nil {
			return nil, err
		}
		if err := decision.Err(); err != nil {
			return nil, err
		}
	}
	updated, err := s.noteRepo.SetArchived(ctx, principal.Tenant.ID, id, !note.IsArchived)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	return updated, err
}
