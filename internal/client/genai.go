package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localtrip/backend/internal/config"
	"google.golang.org/genai"
)

// ErrAINotConfigured is returned by a nil client (AI_API_KEY unset).
var ErrAINotConfigured = errors.New("AI provider not configured")

type GenAIClient struct {
	client *genai.Client
	model  string
}

func NewGenAIClient(ctx context.Context, cfg config.AIConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing AI_API_KEY", ErrAINotConfigured)
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GenAIClient{client: client, model: modelName}, nil
}

// IsConfigured reports whether generation can be attempted at all.
func (c *GenAIClient) IsConfigured() bool {
	return c != nil && c.client != nil
}

func (c *GenAIClient) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// GenerateText returns the model's plain-text answer for prompt.
func (c *GenAIClient) GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return c.generate(ctx, systemPrompt, prompt, "")
}

// GenerateJSON asks the model for a JSON document; callers still validate the shape.
func (c *GenAIClient) GenerateJSON(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return c.generate(ctx, systemPrompt, prompt, "application/json")
}

func (c *GenAIClient) generate(ctx context.Context, systemPrompt, prompt, mimeType string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrAINotConfigured
	}
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if mimeType != "" {
		cfg.ResponseMIMEType = mimeType
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate failed: %w", err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", fmt.Errorf("empty generation result")
	}
	return text, nil
}
