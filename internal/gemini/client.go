// ABOUTME: Client for the hosted generative service's one-shot modes
// ABOUTME: Wraps the genai SDK with explicit construction-time validation
package gemini

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Default model identifiers per mode.
const (
	ModelChat    = "gemini-2.5-flash"
	ModelComplex = "gemini-2.5-pro"
	ModelImage   = "imagen-4.0-generate-001"
	ModelEdit    = "gemini-2.5-flash-image"
	ModelVideo   = "veo-3.1-fast-generate-preview"
	ModelAnalyze = "gemini-2.5-flash"
	ModelSpeech  = "gemini-2.5-flash-preview-tts"
)

// ErrMissingAPIKey reports a client constructed without a credential. The
// failure happens at construction, not on first use.
var ErrMissingAPIKey = errors.New("api key is required")

// ErrEmptyResponse reports a generation that returned no usable content.
var ErrEmptyResponse = errors.New("service returned no content")

// Client calls the hosted service's request/response endpoints.
type Client struct {
	genai  *genai.Client
	logger *zap.Logger
	apiKey string
}

// NewClient creates a client for the hosted service.
func NewClient(ctx context.Context, apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{genai: client, logger: logger, apiKey: apiKey}, nil
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// firstInlineData returns the bytes and mime type of the first inline-data
// part of the first candidate.
func firstInlineData(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", ErrEmptyResponse
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", ErrEmptyResponse
}
