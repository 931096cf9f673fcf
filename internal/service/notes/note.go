package notes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	"kiroku/internal/domain/repositories"
	notesRepo "kiroku/internal/domain/repositories/notes"
	notesSvc "kiroku/internal/domain/services/notes"
	"kiroku/internal/service/diff"
)

type noteService struct {
	noteRepo    notesRepo.NoteRepository
	versionRepo notesRepo.VersionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo notesRepo.NoteRepository,
	versionRepo notesRepo.VersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) notesSvc.NoteService {
	return &noteService{
		noteRepo:    noteRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateNote creates a new note under a (possibly new) category path.
// Categories have no storage of their own, so creating the first note under
// a path is what brings the category into existence.
func (s *noteService) CreateNote(ctx context.Context, req *notesSvc.CreateNoteRequest) (*models.Note, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	category := NormalizePath(req.Category)
	if r := ValidateCategoryPath(category); !r.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, r.Message)
	}

	now := time.Now()
	note := &models.Note{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Category:  category,
		Title:     req.Title,
		Content:   req.Content,
		Order:     req.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		"id", note.ID,
		"user_id", note.UserID,
		"category", note.Category,
		"title", note.Title,
	)

	return note, nil
}

// GetNote retrieves a note
func (s *noteService) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	return s.noteRepo.GetByID(ctx, noteID, userID)
}

// ListNotes lists the user's notes, scoped to a category subtree when
// categoryPath is non-empty
func (s *noteService) ListNotes(ctx context.Context, userID, categoryPath string) ([]models.Note, error) {
	categoryPath = NormalizePath(categoryPath)
	if categoryPath == "" {
		return s.noteRepo.ListByUser(ctx, userID)
	}
	return s.noteRepo.ListByCategoryPrefix(ctx, userID, categoryPath)
}

// UpdateNote updates a note. A content change snapshots the prior content as
// a new version in the same transaction, so history never skips a state.
func (s *noteService) UpdateNote(ctx context.Context, userID, noteID string, req *notesSvc.UpdateNoteRequest) (*models.Note, error) {
	if err := validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	note, err := s.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	snapshot := (*models.NoteVersion)(nil)
	if req.Content != nil && *req.Content != note.Content {
		latest, err := s.versionRepo.LatestVersion(ctx, note.ID)
		if err != nil {
			return nil, fmt.Errorf("latest version: %w", err)
		}
		snapshot = &models.NoteVersion{
			ID:        uuid.NewString(),
			NoteID:    note.ID,
			Version:   latest + 1,
			Title:     note.Title,
			Content:   note.Content,
			CreatedAt: time.Now(),
		}
		note.Content = *req.Content
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Category != nil {
		category := NormalizePath(*req.Category)
		if r := ValidateCategoryPath(category); !r.Valid {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, r.Message)
		}
		note.Category = category
	}
	if req.Order.Present {
		note.Order = req.Order.Value
	}
	note.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if snapshot != nil {
			if err := s.versionRepo.Create(txCtx, snapshot); err != nil {
				return fmt.Errorf("snapshot version: %w", err)
			}
		}
		return s.noteRepo.Update(txCtx, note)
	})
	if err != nil {
		return nil, err
	}

	if snapshot != nil {
		s.logger.Debug("version snapshot taken",
			"note_id", note.ID,
			"version", snapshot.Version,
		)
	}

	return note, nil
}

// DeleteNote deletes a note; its version history goes with it
func (s *noteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	note, err := s.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.DeleteByNote(txCtx, note.ID); err != nil {
			return err
		}
		return s.noteRepo.Delete(txCtx, note.ID, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("note deleted",
		"id", note.ID,
		"user_id", userID,
		"title", note.Title,
	)

	return nil
}

// ListVersions lists version snapshots for a note, newest first
func (s *noteService) ListVersions(ctx context.Context, userID, noteID string) ([]models.NoteVersion, error) {
	// Ownership check before touching version rows.
	note, err := s.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	return s.versionRepo.ListByNote(ctx, note.ID)
}

// DiffVersion computes the hybrid diff from a snapshot to the current content
func (s *noteService) DiffVersion(ctx context.Context, userID, noteID, versionID string) (*notesSvc.VersionDiff, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	version, err := s.versionRepo.GetByID(ctx, versionID, note.ID)
	if err != nil {
		return nil, err
	}

	lines := diff.Generate(version.Content, note.Content)

	// The consistency oracle runs on every comparison. A failure here is an
	// engine defect, not a user error; surface it loudly and keep serving.
	if result := diff.ValidateConsistency(version.Content, note.Content, lines); !result.Valid {
		s.logger.Error("diff consistency check failed",
			"note_id", note.ID,
			"version_id", version.ID,
			"error", result.Error,
		)
	}

	return &notesSvc.VersionDiff{
		NoteID:      note.ID,
		VersionID:   version.ID,
		FromVersion: version.Version,
		Lines:       lines,
	}, nil
}
