// Package assistant answers chat requests over the user's notes through an
// OpenAI-compatible completion API and bills the tokens to the credit ledger.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"kiroku/internal/config"
	"kiroku/internal/domain"
	creditsModels "kiroku/internal/domain/models/credits"
	notesRepo "kiroku/internal/domain/repositories/notes"
	"kiroku/internal/domain/services"
)

const systemPrompt = "You are a writing assistant inside a note-taking app. " +
	"Answer concisely in the language the user writes in. " +
	"When a note is provided, ground your answer in its content."

// chatCompleter is the slice of the OpenAI client the service uses
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type assistantService struct {
	client        chatCompleter
	noteRepo      notesRepo.NoteRepository
	creditService services.CreditService
	model         string
	logger        *slog.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(
	client chatCompleter,
	noteRepo notesRepo.NoteRepository,
	creditService services.CreditService,
	model string,
	logger *slog.Logger,
) services.AssistantService {
	return &assistantService{
		client:        client,
		noteRepo:      noteRepo,
		creditService: creditService,
		model:         model,
		logger:        logger,
	}
}

// NewClient builds the OpenAI client from config. BaseURL allows pointing at
// any OpenAI-compatible endpoint.
func NewClient(cfg *config.Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// Chat completes the conversation, optionally grounded in one of the user's
// notes, then charges the consumed tokens. A charge failure does not retract
// the reply; the shortfall surfaces on the next request.
func (s *assistantService) Chat(ctx context.Context, userID string, req *services.ChatRequest) (*services.ChatResponse, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	balance, err := s.creditService.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check balance: %w", err)
	}
	if balance.Available <= 0 {
		return nil, &domain.InsufficientCreditsError{Required: 1, Available: balance.Available}
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	if req.NoteID != nil {
		note, err := s.noteRepo.GetByID(ctx, *req.NoteID, userID)
		if err != nil {
			return nil, fmt.Errorf("load note for grounding: %w", err)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("The user is working on this note.\nTitle: %s\nCategory: %s\n\n%s", note.Title, note.Category, note.Content),
		})
	}

	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	usage := &creditsModels.Usage{
		Model:            s.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if err := s.creditService.Charge(ctx, userID, usage); err != nil {
		s.logger.Error("failed to charge completed chat",
			"user_id", userID,
			"prompt_tokens", usage.PromptTokens,
			"completion_tokens", usage.CompletionTokens,
			"error", err,
		)
	}

	s.logger.Info("chat completed",
		"user_id", userID,
		"model", s.model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"credits", usage.Credits,
	)

	return &services.ChatResponse{
		Message: services.ChatMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: resp.Choices[0].Message.Content,
		},
		Model:            s.model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		CreditsCharged:   usage.Credits,
	}, nil
}

func validateChatRequest(req *services.ChatRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: at least one message is required", domain.ErrValidation)
	}
	if len(req.Messages) > config.MaxChatMessages {
		return fmt.Errorf("%w: conversation exceeds %d messages", domain.ErrValidation, config.MaxChatMessages)
	}
	for i, m := range req.Messages {
		if m.Role != openai.ChatMessageRoleUser && m.Role != openai.ChatMessageRoleAssistant {
			return fmt.Errorf("%w: message %d has invalid role %q", domain.ErrValidation, i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("%w: message %d is empty", domain.ErrValidation, i)
		}
	}
	if req.Messages[len(req.Messages)-1].Role != openai.ChatMessageRoleUser {
		return fmt.Errorf("%w: last message must come from the user", domain.ErrValidation)
	}
	return nil
}
