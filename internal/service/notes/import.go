package notes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"kiroku/internal/config"
	"kiroku/internal/domain"
	notesSvc "kiroku/internal/domain/services/notes"
)

// noteFrontmatter is the recognized YAML frontmatter schema for imports:
//
//	---
//	title: 深層学習メモ
//	category: 研究/AI
//	order: 3
//	---
//	# Markdown content here
//
// Every field is optional; absent title falls back to the filename.
type noteFrontmatter struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Order    *int   `yaml:"order"`
}

// ImportNotes imports markdown documents, reading title/category/order from
// YAML frontmatter when present. Duplicates are skipped, not failed: the
// mobile app re-sends whole export folders.
func (s *noteService) ImportNotes(ctx context.Context, userID string, req *notesSvc.ImportRequest) (*notesSvc.ImportResult, error) {
	if len(req.Documents) == 0 {
		return nil, fmt.Errorf("%w: no documents to import", domain.ErrValidation)
	}
	if len(req.Documents) > config.MaxImportDocuments {
		return nil, fmt.Errorf("%w: at most %d documents per import", domain.ErrValidation, config.MaxImportDocuments)
	}

	result := &notesSvc.ImportResult{}
	for _, doc := range req.Documents {
		meta, content, err := parseFrontmatter([]byte(doc.Content))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Filename, err))
			continue
		}

		title := meta.Title
		if title == "" {
			title = titleFromFilename(doc.Filename)
		}

		_, err = s.CreateNote(ctx, &notesSvc.CreateNoteRequest{
			UserID:   userID,
			Category: meta.Category,
			Title:    title,
			Content:  content,
			Order:    meta.Order,
		})
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, domain.ErrConflict):
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Filename, err))
		}
	}

	s.logger.Info("import finished",
		"user_id", userID,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	return result, nil
}

// parseFrontmatter splits optional YAML frontmatter from markdown content.
// A document without the opening "---" delimiter is all content.
func parseFrontmatter(content []byte) (*noteFrontmatter, string, error) {
	meta := &noteFrontmatter{}

	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return meta, string(content), nil
	}

	// Find the closing delimiter, skipping the opening "---" line.
	lines := bytes.Split(content, []byte("\n"))
	closingDelim := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			closingDelim = i
			break
		}
	}
	if closingDelim == 0 {
		return nil, "", errors.New("missing closing frontmatter delimiter '---'")
	}

	yamlContent := bytes.Join(lines[1:closingDelim], []byte("\n"))
	if err := yaml.Unmarshal(yamlContent, meta); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	markdown := string(bytes.Join(lines[closingDelim+1:], []byte("\n")))
	return meta, markdown, nil
}

// titleFromFilename derives a note title from a filename, dropping the
// extension and any directory prefix.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	title = strings.TrimSpace(title)
	if title == "" || title == "." {
		return "Untitled"
	}
	// Titles share the flat namespace with category paths; slashes would
	// break the category|title keying.
	return strings.ReplaceAll(title, Separator, "-")
}
