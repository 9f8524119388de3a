package handlers

import (
	"net/http"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NoteHandlers handles note CRUD within the caller's tenant
type NoteHandlers struct {
	noteService services.NoteService
}

func NewNoteHandlers(noteService services.NoteService) *NoteHandlers {
	return &NoteHandlers{noteService: noteService}
}

type noteResponse struct {
	Message string       `json:"message,omitempty"`
	Note    *models.Note `json:"note"`
}

// noteRequestContext pulls the principal and, when the route has one, the note id.
func noteRequestContext(c echo.Context, withID bool) (*models.Principal, uuid.UUID, error) {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return nil, uuid.Nil, services.ErrNoCredential
	}
	if !withID {
		return principal, uuid.Nil, nil
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		// a malformed id cannot name any note
		return nil, uuid.Nil, services.ErrNoteNotFound
	}
	return principal, id, nil
}

func (h *NoteHandlers) Create(c echo.Context) error {
	principal, _, err := noteRequestContext(c, false)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req models.NoteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}

	note, err := h.noteService.Create(c.Request().Context(), principal, &req)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, noteResponse{Message: "Note created successfully", Note: note})
}

func (h *NoteHandlers) List(c echo.Context) error {
	principal, _, err := noteRequestContext(c, false)
	if err != nil {
		return common.RespondError(c, err)
	}

	page, limit, err := common.ParsePagination(c)
	if err != nil {
		return common.SendValidationError(c, "pagination", err.Error())
	}
	archived, err := common.ParseBoolQuery(c, "archived")
	if err != nil {
		return common.SendValidationError(c, "archived", err.Error())
	}

	list, err := h.noteService.List(c.Request().Context(), principal, page, limit, archived)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NoteHandlers) Get(c echo.Context) error {
	principal, id, err := noteRequestContext(c, true)
	if err != nil {
		return common.RespondError(c, err)
	}

	note, err := h.noteService.Get(c.Request().Context(), principal, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, noteResponse{Note: note})
}

func (h *NoteHandlers) Update(c echo.Context) error {
	principal, id, err := noteRequestContext(c, true)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req models.NoteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}

	note, err := h.noteService.Update(c.Request().Context(), principal, id, &req)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, noteResponse{Message: "Note updated successfully", Note: note})
}

func (h *NoteHandlers) Delete(c echo.Context) error {
	principal, id, err := noteRequestContext(c, true)
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.noteService.Delete(c.Request().Context(), principal, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Note deleted successfully"})
}

// ToggleArchive flips the archived flag of a note.
func (h *NoteHandlers) ToggleArchive(c echo.Context) error {
	principal, id, err := noteRequestContext(c, true)
	if err != nil {
		return common.RespondError(c, err)
	}

	note, err := h.noteService.ToggleArchive(c.Request().Context(), principal, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	msg := "Note unarchived successfully"
	if note.IsArchived {
		msg = "Note archived successfully"
	}
	return c.JSON(http.StatusOK, noteResponse{Message: msg, Note: note})
}
