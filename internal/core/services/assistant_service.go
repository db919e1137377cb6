package services

import (
	"context"

	"neurogen-backend/internal/adapters/ai"
	"neurogen-backend/internal/core/domain"
)

// AssistantService exposes the general-purpose medical chat assistant.
// It is a thin pass-through: the client owns the conversation history
// and sends the full turn list on every request.
type AssistantService struct {
	model ai.Client
}

// NewAssistantService creates a new assistant service
func NewAssistantService(model ai.Client) *AssistantService {
	return &AssistantService{model: model}
}

// Chat forwards the turn history to the model and returns the
// assistant's reply. jsonMode constrains the reply to a single JSON
// object at low temperature.
func (s *AssistantService) Chat(ctx context.Context, turns []ai.Turn, jsonMode bool) (string, error) {
	if len(turns) == 0 {
		return "", domain.ErrInvalidInput
	}
	return s.model.Generate(ctx, turns, jsonMode)
}
