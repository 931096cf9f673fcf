package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	"kiroku/internal/domain/repositories"
	notesRepo "kiroku/internal/domain/repositories/notes"
	notesSvc "kiroku/internal/domain/services/notes"
)

type categoryService struct {
	noteRepo  notesRepo.NoteRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	noteRepo notesRepo.NoteRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) notesSvc.CategoryService {
	return &categoryService{
		noteRepo:  noteRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// GetTree builds the ordered category tree view from the user's flat note set
func (s *categoryService) GetTree(ctx context.Context, userID string, sortMethod string) ([]models.CategoryNode, error) {
	switch sortMethod {
	case "":
		sortMethod = notesSvc.SortByName
	case notesSvc.SortByName, notesSvc.SortByFileCount:
	default:
		return nil, fmt.Errorf("%w: unknown sort method %q", domain.ErrValidation, sortMethod)
	}

	noteList, err := s.noteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	tree := GroupNotesByCategory(noteList, sortMethod)

	s.logger.Debug("category tree built",
		"user_id", userID,
		"note_count", len(noteList),
		"node_count", len(tree),
	)

	return tree, nil
}

// GetImpact previews a destructive category operation by scanning the notes
// at or under the path
func (s *categoryService) GetImpact(ctx context.Context, userID, path string) (*models.CategoryImpact, error) {
	path = NormalizePath(path)
	if path == "" {
		return nil, fmt.Errorf("%w: category path is required", domain.ErrValidation)
	}

	affected, err := s.noteRepo.ListByCategoryPrefix(ctx, userID, path)
	if err != nil {
		return nil, fmt.Errorf("list notes under %q: %w", path, err)
	}

	impact := &models.CategoryImpact{
		ChildCategories: []string{},
		TotalFileCount:  len(affected),
	}

	childSet := make(map[string]bool)
	prefixDepth := PathDepth(path)
	for _, n := range affected {
		category := NormalizePath(n.Category)
		if category == path {
			impact.DirectFileCount++
			continue
		}
		// Immediate child only: one segment below the path.
		segments := SplitPath(category)
		child := JoinPath(path, segments[prefixDepth])
		childSet[child] = true
	}
	for child := range childSet {
		impact.ChildCategories = append(impact.ChildCategories, child)
	}
	sort.Strings(impact.ChildCategories)

	return impact, nil
}

// RenameCategory rewrites the path prefix of every note at or under OldPath
func (s *categoryService) RenameCategory(ctx context.Context, userID string, req *notesSvc.MoveCategoryRequest) (*notesSvc.MoveCategoryResult, error) {
	return s.moveCategory(ctx, userID, req, "rename")
}

// MoveCategory relocates a category subtree; the rewrite contract matches
// RenameCategory, only the intent (and log line) differs
func (s *categoryService) MoveCategory(ctx context.Context, userID string, req *notesSvc.MoveCategoryRequest) (*notesSvc.MoveCategoryResult, error) {
	return s.moveCategory(ctx, userID, req, "move")
}

func (s *categoryService) moveCategory(ctx context.Context, userID string, req *notesSvc.MoveCategoryRequest, op string) (*notesSvc.MoveCategoryResult, error) {
	oldPath := NormalizePath(req.OldPath)
	newPath := NormalizePath(req.NewPath)

	// All validation is synchronous and completes before any mutation.
	if r := ValidateMove(oldPath, newPath); !r.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, r.Message)
	}

	noteList, err := s.noteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	// Partition into the affected subtree and the untouched rest.
	var affected []models.Note
	occupied := make(map[string]string) // "category|title" → note ID, for destination collisions
	for _, n := range noteList {
		if IsDescendantOrSelf(n.Category, oldPath) {
			affected = append(affected, n)
		} else {
			occupied[NormalizePath(n.Category)+"|"+n.Title] = n.ID
		}
	}
	if len(affected) == 0 {
		return nil, fmt.Errorf("category %q: %w", oldPath, domain.ErrNotFound)
	}

	// Duplicate policy: refuse when a note with the same title already lives
	// at a rewritten destination.
	now := time.Now()
	batch := make([]models.Note, 0, len(affected))
	for _, n := range affected {
		rewritten := n
		rewritten.Category = RewritePrefix(n.Category, oldPath, newPath)
		rewritten.UpdatedAt = now
		if existingID, exists := occupied[rewritten.Category+"|"+rewritten.Title]; exists {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a note titled %q already exists in %q", rewritten.Title, rewritten.Category),
				ResourceType: "note",
				ResourceID:   existingID,
			}
		}
		batch = append(batch, rewritten)
	}

	// Apply the cascade as one batch.
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.noteRepo.UpdateAll(txCtx, batch)
	})
	if err != nil {
		return nil, fmt.Errorf("%s category: %w", op, err)
	}

	s.logger.Info("category "+op+"d",
		"user_id", userID,
		"old_path", oldPath,
		"new_path", newPath,
		"updated_notes", len(batch),
	)

	return &notesSvc.MoveCategoryResult{
		OldPath:      oldPath,
		NewPath:      newPath,
		UpdatedNotes: len(batch),
	}, nil
}

// DeleteCategory deletes every note at or under path. Version snapshots go
// with their notes via the FK cascade.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, path string) (*notesSvc.DeleteCategoryResult, error) {
	path = NormalizePath(path)
	if path == "" {
		return nil, fmt.Errorf("%w: category path is required", domain.ErrValidation)
	}

	var deleted int64
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		n, err := s.noteRepo.DeleteByCategoryPrefix(txCtx, userID, path)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	if deleted == 0 {
		return nil, fmt.Errorf("category %q: %w", path, domain.ErrNotFound)
	}

	s.logger.Info("category deleted",
		"user_id", userID,
		"path", path,
		"deleted_notes", deleted,
	)

	return &notesSvc.DeleteCategoryResult{Path: path, DeletedNotes: deleted}, nil
}
