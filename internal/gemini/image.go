// ABOUTME: Image generation and image editing modes
// ABOUTME: Validates aspect ratios and extracts inline image payloads
package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// AspectRatios are the ratios the image model accepts.
var AspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

// ValidAspectRatio reports whether ratio is one the image model accepts.
func ValidAspectRatio(ratio string) bool {
	for _, r := range AspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// GenerateImage renders one JPEG for the prompt at the given aspect ratio.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if !ValidAspectRatio(aspectRatio) {
		return nil, fmt.Errorf("unsupported aspect ratio %q (valid: %v)", aspectRatio, AspectRatios)
	}

	resp, err := c.genai.Models.GenerateImages(ctx, ModelImage, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, ErrEmptyResponse
	}

	c.logger.Debug("Image generated", zap.String("aspect_ratio", aspectRatio))
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// EditImage applies the prompt to an existing image and returns the edited
// image bytes and mime type.
func (c *Client) EditImage(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, string, error) {
	if len(image) == 0 {
		return nil, "", fmt.Errorf("image payload is empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, ModelEdit, contents, config)
	if err != nil {
		return nil, "", fmt.Errorf("image edit failed: %w", err)
	}

	edited, editedMIME, err := firstInlineData(resp)
	if err != nil {
		return nil, "", err
	}

	c.logger.Debug("Image edited", zap.String("mime_type", editedMIME))
	return edited, editedMIME, nil
}
