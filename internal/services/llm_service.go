package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/justsurfingit/lead-labeler/internal/logger"
)

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is empty")

// LLMService holds the Gemini client shared by every llm model artifact.
type LLMService struct {
	Client llms.Model
}

// NewLLMService initializes the Gemini client.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	logger.Info("LLM client ready", "model", model)
	return &LLMService{Client: llm}, nil
}

// Model returns the client, or nil when s is nil so callers can pass an
// unconfigured service straight to a classifier loader.
func (s *LLMService) Model() llms.Model {
	if s == nil {
		return nil
	}
	return s.Client
}
