// ABOUTME: Image-content analysis mode
// ABOUTME: Sends an image plus question and returns the model's description
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// AnalyzeImage answers a question about an image.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, ModelAnalyze, contents, nil)
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}

	return firstText(resp)
}
