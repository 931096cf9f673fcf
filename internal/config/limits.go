package config

const (
	// MaxNoteTitleLength is the maximum length for note titles.
	// Titles render in list rows on the client, so they stay short.
	MaxNoteTitleLength = 255

	// MaxCategorySegmentLength is the maximum length for one category path
	// segment. Same bound as titles.
	MaxCategorySegmentLength = 255

	// MaxCategoryPathLength is the maximum length for a full category path.
	MaxCategoryPathLength = 500

	// MaxNoteContentBytes caps note content on create/update and import.
	MaxNoteContentBytes = 1 << 20

	// MaxImportDocuments caps a single import request.
	MaxImportDocuments = 200

	// MaxChatMessages caps the conversation window sent to the assistant.
	MaxChatMessages = 50
)
