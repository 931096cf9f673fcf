package notes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	"kiroku/internal/domain/repositories"
	notesSvc "kiroku/internal/domain/services/notes"
)

// fakeNoteRepo is an in-memory NoteRepository for service tests.
type fakeNoteRepo struct {
	notes map[string]models.Note // id → note
}

func newFakeNoteRepo(noteList ...models.Note) *fakeNoteRepo {
	repo := &fakeNoteRepo{notes: make(map[string]models.Note)}
	for _, n := range noteList {
		repo.notes[n.ID] = n
	}
	return repo
}

func (r *fakeNoteRepo) Create(_ context.Context, n *models.Note) error {
	for _, existing := range r.notes {
		if existing.UserID == n.UserID && existing.Category == n.Category && existing.Title == n.Title {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a note titled %q already exists", n.Title),
				ResourceType: "note",
				ResourceID:   existing.ID,
			}
		}
	}
	r.notes[n.ID] = *n
	return nil
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id, userID string) (*models.Note, error) {
	n, okay := r.notes[id]
	if !okay || n.UserID != userID {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return &n, nil
}

func (r *fakeNoteRepo) ListByUser(_ context.Context, userID string) ([]models.Note, error) {
	var out []models.Note
	for _, n := range r.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) ListByCategoryPrefix(_ context.Context, userID, path string) ([]models.Note, error) {
	var out []models.Note
	for _, n := range r.notes {
		if n.UserID == userID && IsDescendantOrSelf(n.Category, path) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) Update(_ context.Context, n *models.Note) error {
	if _, okay := r.notes[n.ID]; !okay {
		return fmt.Errorf("note %s: %w", n.ID, domain.ErrNotFound)
	}
	r.notes[n.ID] = *n
	return nil
}

func (r *fakeNoteRepo) UpdateAll(ctx context.Context, batch []models.Note) error {
	for i := range batch {
		if err := r.Update(ctx, &batch[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id, userID string) error {
	n, okay := r.notes[id]
	if !okay || n.UserID != userID {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) DeleteByCategoryPrefix(_ context.Context, userID, path string) (int64, error) {
	var deleted int64
	for id, n := range r.notes {
		if n.UserID == userID && IsDescendantOrSelf(n.Category, path) {
			delete(r.notes, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeTxManager runs the function directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userNote(id, category, title string) models.Note {
	return models.Note{ID: id, UserID: "u1", Category: category, Title: title}
}

func TestValidateMove(t *testing.T) {
	tests := []struct {
		name    string
		oldPath string
		newPath string
		valid   bool
	}{
		{"simple rename", "a", "b", true},
		{"move deeper elsewhere", "a/b", "c/d", true},
		{"into own subtree", "a", "a/b", false},
		{"into itself", "a/b", "a/b", false},
		{"into deep descendant", "a", "a/b/c/d", false},
		{"unnormalized cycle", "a", "/a/b/", false},
		{"empty source", "", "b", false},
		{"empty destination", "a", "", false},
		{"destination slash only", "a", "///", false},
		{"sibling with shared prefix is fine", "a", "ab", true},
		{"merge into ancestor is fine", "a/b/c", "a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMove(tt.oldPath, tt.newPath)
			if result.Valid != tt.valid {
				t.Errorf("ValidateMove(%q, %q).Valid = %v, want %v (message %q)",
					tt.oldPath, tt.newPath, result.Valid, tt.valid, result.Message)
			}
			if !result.Valid && result.Message == "" {
				t.Error("invalid result carries no message")
			}
		})
	}
}

func TestRenameCategoryCascades(t *testing.T) {
	repo := newFakeNoteRepo(
		userNote("1", "研究", "概要"),
		userNote("2", "研究/AI", "論文メモ"),
		userNote("3", "研究/AI/深層学習", "実験ログ"),
		userNote("4", "別件", "無関係"),
	)
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	result, err := svc.RenameCategory(context.Background(), "u1", &notesSvc.MoveCategoryRequest{
		OldPath: "研究",
		NewPath: "調査",
	})
	if err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	if result.UpdatedNotes != 3 {
		t.Errorf("UpdatedNotes = %d, want 3", result.UpdatedNotes)
	}

	wantCategories := map[string]string{
		"1": "調査",
		"2": "調査/AI",
		"3": "調査/AI/深層学習",
		"4": "別件",
	}
	for id, want := range wantCategories {
		if got := repo.notes[id].Category; got != want {
			t.Errorf("note %s category = %q, want %q", id, got, want)
		}
	}
}

func TestRenameCategoryRejectsCycle(t *testing.T) {
	repo := newFakeNoteRepo(userNote("1", "a", "n"))
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	_, err := svc.RenameCategory(context.Background(), "u1", &notesSvc.MoveCategoryRequest{
		OldPath: "a",
		NewPath: "a/b",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// No mutation happened.
	if repo.notes["1"].Category != "a" {
		t.Errorf("note mutated despite rejected move: %q", repo.notes["1"].Category)
	}
}

func TestMoveCategoryRejectsDuplicateTitleAtDestination(t *testing.T) {
	repo := newFakeNoteRepo(
		userNote("1", "src", "同名ノート"),
		userNote("2", "dst", "同名ノート"),
	)
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	_, err := svc.MoveCategory(context.Background(), "u1", &notesSvc.MoveCategoryRequest{
		OldPath: "src",
		NewPath: "dst",
	})

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.ResourceID != "2" {
		t.Errorf("conflict names resource %s, want 2", conflict.ResourceID)
	}
	if repo.notes["1"].Category != "src" {
		t.Errorf("note mutated despite rejected move: %q", repo.notes["1"].Category)
	}
}

func TestMoveCategoryUnknownPath(t *testing.T) {
	repo := newFakeNoteRepo(userNote("1", "a", "n"))
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	_, err := svc.MoveCategory(context.Background(), "u1", &notesSvc.MoveCategoryRequest{
		OldPath: "does/not/exist",
		NewPath: "elsewhere",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetImpact(t *testing.T) {
	repo := newFakeNoteRepo(
		userNote("1", "a", "direct"),
		userNote("2", "a/b", "child one"),
		userNote("3", "a/b/c", "grandchild"),
		userNote("4", "a/d", "child two"),
		userNote("5", "other", "unrelated"),
	)
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	impact, err := svc.GetImpact(context.Background(), "u1", "a")
	if err != nil {
		t.Fatalf("GetImpact: %v", err)
	}

	if impact.DirectFileCount != 1 {
		t.Errorf("DirectFileCount = %d, want 1", impact.DirectFileCount)
	}
	if impact.TotalFileCount != 4 {
		t.Errorf("TotalFileCount = %d, want 4", impact.TotalFileCount)
	}
	wantChildren := []string{"a/b", "a/d"} // immediate children only, sorted
	if len(impact.ChildCategories) != len(wantChildren) {
		t.Fatalf("ChildCategories = %v, want %v", impact.ChildCategories, wantChildren)
	}
	for i, want := range wantChildren {
		if impact.ChildCategories[i] != want {
			t.Errorf("ChildCategories[%d] = %s, want %s", i, impact.ChildCategories[i], want)
		}
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	repo := newFakeNoteRepo(
		userNote("1", "a", "direct"),
		userNote("2", "a/b", "nested"),
		userNote("3", "other", "survivor"),
	)
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	result, err := svc.DeleteCategory(context.Background(), "u1", "a")
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if result.DeletedNotes != 2 {
		t.Errorf("DeletedNotes = %d, want 2", result.DeletedNotes)
	}
	if _, okay := repo.notes["3"]; !okay {
		t.Error("note outside the category was deleted")
	}
	if len(repo.notes) != 1 {
		t.Errorf("%d notes remain, want 1", len(repo.notes))
	}
}

func TestGetTreeRejectsUnknownSortMethod(t *testing.T) {
	repo := newFakeNoteRepo()
	svc := NewCategoryService(repo, fakeTxManager{}, testLogger())

	if _, err := svc.GetTree(context.Background(), "u1", "bogus"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
