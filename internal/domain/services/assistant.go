package services

import "context"

// AssistantService answers chat requests, optionally grounded in one of the
// user's notes, and charges credits for the tokens consumed.
type AssistantService interface {
	Chat(ctx context.Context, userID string, req *ChatRequest) (*ChatResponse, error)
}

// ChatMessage is one turn of the conversation, client-held
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest carries the conversation so far plus an optional note to ground on
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	NoteID   *string       `json:"note_id,omitempty"`
}

// ChatResponse is the assistant's reply plus what it cost
type ChatResponse struct {
	Message          ChatMessage `json:"message"`
	Model            string      `json:"model"`
	PromptTokens     int         `json:"prompt_tokens"`
	CompletionTokens int         `json:"completion_tokens"`
	CreditsCharged   int64       `json:"credits_charged"`
}
