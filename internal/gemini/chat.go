// ABOUTME: Text chat with optional search and map grounding
// ABOUTME: Routes complex prompts to the larger model with a thinking budget
package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// complexThinkingBudget is the token budget granted to the larger model for
// internal reasoning on complex prompts.
const complexThinkingBudget int32 = 32768

// Location anchors map grounding to a coordinate.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Turn is one prior exchange in a conversation.
type Turn struct {
	// Role is genai.RoleUser or genai.RoleModel.
	Role string
	Text string
}

// ChatRequest is one chat turn.
type ChatRequest struct {
	Prompt string
	// History holds prior turns, oldest first.
	History []Turn
	// Complex routes the prompt to the larger model with a thinking budget.
	Complex bool
	// UseSearch enables web-search grounding.
	UseSearch bool
	// UseMaps enables map grounding; Location anchors it when set.
	UseMaps  bool
	Location *Location
}

// Source is one grounding citation.
type Source struct {
	Title string
	URI   string
}

// ChatResponse is the model's answer plus any grounding citations.
type ChatResponse struct {
	Text    string
	Sources []Source
}

// Chat sends one prompt and returns the response text with citations.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	model := ModelChat
	config := &genai.GenerateContentConfig{}

	if req.Complex {
		model = ModelComplex
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(complexThinkingBudget),
		}
	}

	if req.UseSearch {
		config.Tools = append(config.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if req.UseMaps {
		config.Tools = append(config.Tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
		if req.Location != nil {
			config.ToolConfig = &genai.ToolConfig{
				RetrievalConfig: &genai.RetrievalConfig{
					LatLng: &genai.LatLng{
						Latitude:  genai.Ptr(req.Location.Latitude),
						Longitude: genai.Ptr(req.Location.Longitude),
					},
				},
			}
		}
	}

	var contents []*genai.Content
	for _, turn := range req.History {
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chat request failed: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		return ChatResponse{}, err
	}

	sources := extractSources(resp)
	c.logger.Debug("Chat turn completed",
		zap.String("model", model),
		zap.Int("sources", len(sources)))

	return ChatResponse{Text: text, Sources: sources}, nil
}

// extractSources pulls grounding citations from the first candidate.
func extractSources(resp *genai.GenerateContentResponse) []Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return sources
}
