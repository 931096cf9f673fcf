package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	notesSvc "kiroku/internal/domain/services/notes"
	"kiroku/internal/httputil"
)

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	noteService notesSvc.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService notesSvc.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// HealthCheck reports service liveness
// GET /health
func (h *NoteHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateNote creates a new note
// POST /api/notes
// Returns 201 if created, 409 with the existing note if duplicate
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req notesSvc.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userID

	note, err := h.noteService.CreateNote(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Note, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return h.noteService.GetNote(r.Context(), userID, conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

// ListNotes retrieves the user's notes, optionally scoped to a category subtree
// GET /api/notes?category=...
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	noteList, err := h.noteService.ListNotes(r.Context(), userID, r.URL.Query().Get("category"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, noteList)
}

// GetNote retrieves a note by ID
// GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Note ID is required")
		return
	}

	note, err := h.noteService.GetNote(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// updateNoteBody is the transport shape of a note update. Order maps to a
// tri-state so null clears the manual sort position.
type updateNoteBody struct {
	Category *string              `json:"category"`
	Title    *string              `json:"title"`
	Content  *string              `json:"content"`
	Order    httputil.OptionalInt `json:"order"`
}

// UpdateNote updates a note
// PATCH /api/notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Note ID is required")
		return
	}

	var body updateNoteBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := notesSvc.UpdateNoteRequest{
		Category: body.Category,
		Title:    body.Title,
		Content:  body.Content,
		Order: notesSvc.OptionalOrder{
			Present: body.Order.Present,
			Value:   body.Order.Value,
		},
	}

	note, err := h.noteService.UpdateNote(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes a note and its version history
// DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Note ID is required")
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVersions lists version snapshots for a note, newest first
// GET /api/notes/{id}/versions
func (h *NoteHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Note ID is required")
		return
	}

	versions, err := h.noteService.ListVersions(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// DiffVersion compares a version snapshot against the current content
// GET /api/notes/{id}/versions/{versionId}/diff
func (h *NoteHandler) DiffVersion(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id := r.PathValue("id")
	versionID := r.PathValue("versionId")
	if id == "" || versionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Note ID and version ID are required")
		return
	}

	diff, err := h.noteService.DiffVersion(r.Context(), userID, id, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, diff)
}

// ImportNotes imports markdown documents with optional YAML frontmatter
// POST /api/notes/import
func (h *NoteHandler) ImportNotes(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req notesSvc.ImportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.noteService.ImportNotes(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
