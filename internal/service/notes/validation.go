package notes

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"kiroku/internal/config"
	notesSvc "kiroku/internal/domain/services/notes"
)

var noSlash = regexp.MustCompile(`^[^/]+$`)

// ok is the successful ValidationResult.
func ok() notesSvc.ValidationResult {
	return notesSvc.ValidationResult{Valid: true}
}

func invalid(format string, args ...interface{}) notesSvc.ValidationResult {
	return notesSvc.ValidationResult{Valid: false, Message: fmt.Sprintf(format, args...)}
}

// ValidateCategoryPath checks a normalized category path for structural
// limits. The root ("") is valid: notes may be uncategorized.
func ValidateCategoryPath(path string) notesSvc.ValidationResult {
	path = NormalizePath(path)
	if path == "" {
		return ok()
	}
	if len(path) > config.MaxCategoryPathLength {
		return invalid("category path exceeds maximum length of %d", config.MaxCategoryPathLength)
	}
	for _, segment := range SplitPath(path) {
		if len(segment) > config.MaxCategorySegmentLength {
			return invalid("category segment %q exceeds maximum length of %d", segment, config.MaxCategorySegmentLength)
		}
	}
	return ok()
}

// ValidateMove checks a rename/move before any mutation is attempted.
// The cycle check is the critical one: rewriting a prefix into its own
// subtree would orphan the whole branch.
func ValidateMove(oldPath, newPath string) notesSvc.ValidationResult {
	oldPath = NormalizePath(oldPath)
	newPath = NormalizePath(newPath)

	if oldPath == "" {
		return invalid("source category cannot be the root")
	}
	if newPath == "" {
		return invalid("destination category cannot be empty")
	}
	if oldPath == newPath {
		return invalid("source and destination are the same category")
	}
	if IsDescendantOrSelf(newPath, oldPath) {
		return invalid("cannot move a category into itself or its own subtree")
	}
	if r := ValidateCategoryPath(newPath); !r.Valid {
		return r
	}
	return ok()
}

// validateCreateRequest validates a note creation request
func validateCreateRequest(req *notesSvc.CreateNoteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxNoteTitleLength),
			validation.Match(noSlash).Error("note title cannot contain slashes"),
		),
		validation.Field(&req.Content,
			validation.Length(0, config.MaxNoteContentBytes),
		),
	)
}

// validateUpdateRequest validates a note update request
func validateUpdateRequest(req *notesSvc.UpdateNoteRequest) error {
	// At least one field must be provided
	if req.Title == nil && req.Category == nil && req.Content == nil && !req.Order.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{}
	if req.Title != nil {
		rules = append(rules,
			validation.Field(&req.Title,
				validation.Required,
				validation.Length(1, config.MaxNoteTitleLength),
				validation.Match(noSlash).Error("note title cannot contain slashes"),
			),
		)
	}
	if req.Content != nil {
		rules = append(rules,
			validation.Field(&req.Content,
				validation.Length(0, config.MaxNoteContentBytes),
			),
		)
	}
	return validation.ValidateStruct(req, rules...)
}
