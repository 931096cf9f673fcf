package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	notesSvc "kiroku/internal/domain/services/notes"
)

// fakeVersionRepo is an in-memory VersionRepository for service tests.
type fakeVersionRepo struct {
	versions map[string][]models.NoteVersion // noteID → snapshots
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]models.NoteVersion)}
}

func (r *fakeVersionRepo) Create(_ context.Context, v *models.NoteVersion) error {
	r.versions[v.NoteID] = append(r.versions[v.NoteID], *v)
	return nil
}

func (r *fakeVersionRepo) GetByID(_ context.Context, id, noteID string) (*models.NoteVersion, error) {
	for _, v := range r.versions[noteID] {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
}

func (r *fakeVersionRepo) ListByNote(_ context.Context, noteID string) ([]models.NoteVersion, error) {
	out := append([]models.NoteVersion(nil), r.versions[noteID]...)
	sort.Slice(out, func(a, b int) bool { return out[a].Version > out[b].Version })
	return out, nil
}

func (r *fakeVersionRepo) LatestVersion(_ context.Context, noteID string) (int, error) {
	latest := 0
	for _, v := range r.versions[noteID] {
		if v.Version > latest {
			latest = v.Version
		}
	}
	return latest, nil
}

func (r *fakeVersionRepo) DeleteByNote(_ context.Context, noteID string) error {
	delete(r.versions, noteID)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateNoteNormalizesCategory(t *testing.T) {
	repo := newFakeNoteRepo()
	svc := NewNoteService(repo, newFakeVersionRepo(), fakeTxManager{}, testLogger())

	note, err := svc.CreateNote(context.Background(), &notesSvc.CreateNoteRequest{
		UserID:   "u1",
		Category: "/研究//AI/",
		Title:    "論文メモ",
		Content:  "本文",
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.Category != "研究/AI" {
		t.Errorf("Category = %q, want %q", note.Category, "研究/AI")
	}
	if note.ID == "" {
		t.Error("note has no ID")
	}
}

func TestCreateNoteRejectsSlashInTitle(t *testing.T) {
	svc := NewNoteService(newFakeNoteRepo(), newFakeVersionRepo(), fakeTxManager{}, testLogger())

	_, err := svc.CreateNote(context.Background(), &notesSvc.CreateNoteRequest{
		UserID: "u1",
		Title:  "a/b",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateNoteSnapshotsOnContentChange(t *testing.T) {
	repo := newFakeNoteRepo(models.Note{ID: "1", UserID: "u1", Title: "メモ", Content: "v1 content"})
	versionRepo := newFakeVersionRepo()
	svc := NewNoteService(repo, versionRepo, fakeTxManager{}, testLogger())

	// Title-only update takes no snapshot.
	_, err := svc.UpdateNote(context.Background(), "u1", "1", &notesSvc.UpdateNoteRequest{
		Title: strPtr("改名したメモ"),
	})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if len(versionRepo.versions["1"]) != 0 {
		t.Fatalf("%d snapshots after title change, want 0", len(versionRepo.versions["1"]))
	}

	// Content change snapshots the prior content.
	_, err = svc.UpdateNote(context.Background(), "u1", "1", &notesSvc.UpdateNoteRequest{
		Content: strPtr("v2 content"),
	})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	snapshots := versionRepo.versions["1"]
	if len(snapshots) != 1 {
		t.Fatalf("%d snapshots after content change, want 1", len(snapshots))
	}
	if snapshots[0].Version != 1 {
		t.Errorf("snapshot version = %d, want 1", snapshots[0].Version)
	}
	if snapshots[0].Content != "v1 content" {
		t.Errorf("snapshot holds %q, want the prior content", snapshots[0].Content)
	}
	if repo.notes["1"].Content != "v2 content" {
		t.Errorf("note content = %q, want %q", repo.notes["1"].Content, "v2 content")
	}

	// Identical content is not a change.
	_, err = svc.UpdateNote(context.Background(), "u1", "1", &notesSvc.UpdateNoteRequest{
		Content: strPtr("v2 content"),
	})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if len(versionRepo.versions["1"]) != 1 {
		t.Errorf("%d snapshots after no-op content update, want 1", len(versionRepo.versions["1"]))
	}
}

func TestUpdateNoteOrderTriState(t *testing.T) {
	five := 5
	repo := newFakeNoteRepo(models.Note{ID: "1", UserID: "u1", Title: "n", Order: &five})
	svc := NewNoteService(repo, newFakeVersionRepo(), fakeTxManager{}, testLogger())

	// Absent order leaves it alone.
	_, err := svc.UpdateNote(context.Background(), "u1", "1", &notesSvc.UpdateNoteRequest{
		Title: strPtr("renamed"),
	})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if got := repo.notes["1"].Order; got == nil || *got != 5 {
		t.Errorf("Order changed by unrelated update: %v", got)
	}

	// Explicit null clears it.
	_, err = svc.UpdateNote(context.Background(), "u1", "1", &notesSvc.UpdateNoteRequest{
		Order: notesSvc.OptionalOrder{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if repo.notes["1"].Order != nil {
		t.Errorf("Order = %v after explicit null, want nil", *repo.notes["1"].Order)
	}
}

func TestUpdateNoteRequiresAField(t *testing.T) {
	svc := NewNoteService(newFakeNoteRepo(userNote("1", "", "n")), newFakeVersionRepo(), fakeTxManager{}, testLogger())

	_, err := svc.UpdateNote(context.Background(), "u1", "1", &notesSvc.UpdateNoteRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDeleteNoteRemovesVersions(t *testing.T) {
	repo := newFakeNoteRepo(userNote("1", "a", "n"))
	versionRepo := newFakeVersionRepo()
	versionRepo.versions["1"] = []models.NoteVersion{{ID: "v1", NoteID: "1", Version: 1}}
	svc := NewNoteService(repo, versionRepo, fakeTxManager{}, testLogger())

	if err := svc.DeleteNote(context.Background(), "u1", "1"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if len(repo.notes) != 0 {
		t.Error("note still present after delete")
	}
	if len(versionRepo.versions["1"]) != 0 {
		t.Error("versions still present after delete")
	}
}

func TestListVersionsChecksOwnership(t *testing.T) {
	repo := newFakeNoteRepo(models.Note{ID: "1", UserID: "someone-else", Title: "n"})
	svc := NewNoteService(repo, newFakeVersionRepo(), fakeTxManager{}, testLogger())

	if _, err := svc.ListVersions(context.Background(), "u1", "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDiffVersionAgainstCurrentContent(t *testing.T) {
	repo := newFakeNoteRepo(models.Note{ID: "1", UserID: "u1", Title: "n", Content: "line one\nline two changed"})
	versionRepo := newFakeVersionRepo()
	versionRepo.versions["1"] = []models.NoteVersion{{
		ID: "v1", NoteID: "1", Version: 1, Content: "line one\nline two",
	}}
	svc := NewNoteService(repo, versionRepo, fakeTxManager{}, testLogger())

	result, err := svc.DiffVersion(context.Background(), "u1", "1", "v1")
	if err != nil {
		t.Fatalf("DiffVersion: %v", err)
	}
	if result.FromVersion != 1 {
		t.Errorf("FromVersion = %d, want 1", result.FromVersion)
	}
	if len(result.Lines) == 0 {
		t.Fatal("diff produced no lines")
	}

	var sawDelete, sawAdd bool
	for _, line := range result.Lines {
		switch {
		case strings.HasPrefix(string(line.Type), "delet"):
			sawDelete = true
		case strings.HasPrefix(string(line.Type), "add"):
			sawAdd = true
		}
	}
	if !sawDelete || !sawAdd {
		t.Errorf("diff missing changed-line pair: %+v", result.Lines)
	}
}

func TestListNotesScopedToSubtree(t *testing.T) {
	repo := newFakeNoteRepo(
		userNote("1", "a", "one"),
		userNote("2", "a/b", "two"),
		userNote("3", "other", "three"),
	)
	svc := NewNoteService(repo, newFakeVersionRepo(), fakeTxManager{}, testLogger())

	scoped, err := svc.ListNotes(context.Background(), "u1", "a")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("%d notes under \"a\", want 2", len(scoped))
	}

	all, err := svc.ListNotes(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("%d notes at root, want 3", len(all))
	}
}
