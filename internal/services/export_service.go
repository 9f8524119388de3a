package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/repositories"
)

// ErrExportUnavailable is returned when no object storage is configured.
var ErrExportUnavailable = errors.New("note export is not configured")

type ExportService interface {
	ExportNotes(ctx context.Context, principal *models.Principal, slug string) (*ExportResult, error)
}

type ExportResult struct {
	Object    string    `json:"object"`
	URL       string    `json:"url"`
	NoteCount int       `json:"note_count"`
	ExpiresAt time.Time `json:"expires_at"`
}

type noteExport struct {
	Tenant     models.TenantResponse `json:"tenant"`
	ExportedAt time.Time             `json:"exported_at"`
	Notes      []*models.Note        `json:"notes"`
}

type exportService struct {
	storage       MinioService
	noteRepo      repositories.NoteRepository
	bucket        string
	presignExpiry time.Duration
	now           func() time.Time
}

// NewExportService returns a service that fails every export when storage is nil.
func NewExportService(storage MinioService, noteRepo repositories.NoteRepository, bucket string, presignExpiry time.Duration) ExportService {
	return &exportService{
		storage:       storage,
		noteRepo:      noteRepo,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		now:           time.Now,
	}
}

// ExportNotes writes the tenant's active notes to object storage and returns
// a time-limited download link. Only the principal's own tenant can be exported.
func (s *exportService) ExportNotes(ctx context.Context, principal *models.Principal, slug string) (*ExportResult, error) {
	if principal.Tenant.Slug != NormalizeSlug(slug) {
		return nil, ErrWrongTenant
	}
	if s.storage == nil {
		return nil, ErrExportUnavailable
	}

	notes, err := s.noteRepo.List(ctx, principal.Tenant.ID, repositories.NoteFilter{Archived: false})
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %w", ErrInternal, err)
	}

	now := s.now().UTC()
	body, err := json.Marshal(noteExport{
		Tenant:     models.NewUserResponse(principal).Tenant,
		ExportedAt: now,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}

	object := fmt.Sprintf("%s/notes-%d.json", principal.Tenant.Slug, now.Unix())
	if err := s.storage.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, fmt.Errorf("%w: ensure bucket: %w", ErrInternal, err)
	}
	if err := s.storage.UploadObject(ctx, s.bucket, object, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, fmt.Errorf("%w: upload export: %w", ErrInternal, err)
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, object, s.presignExpiry)
	if err != nil {
		// an export nobody can download is removed
		if delErr := s.storage.DeleteObject(ctx, s.bucket, object); delErr != nil {
			logger.WarnCtx(ctx, "failed to remove unreachable export", zap.String("object", object), zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: presign export: %w", ErrInternal, err)
	}

	return &ExportResult{
		Object:    object,
		URL:       url,
		NoteCount: len(notes),
		ExpiresAt: now.Add(s.presignExpiry),
	}, nil
}
