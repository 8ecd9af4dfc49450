// ABOUTME: One-shot text-to-speech mode
// ABOUTME: Returns raw 24kHz mono PCM for local playback
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultSpeechVoice is the prebuilt voice used when none is requested.
const DefaultSpeechVoice = "Kore"

// Synthesize renders text as speech and returns raw little-endian 16-bit
// PCM at the service's output rate.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text is empty")
	}
	if voice == "" {
		voice = DefaultSpeechVoice
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, ModelSpeech, contents, config)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	pcm, _, err := firstInlineData(resp)
	if err != nil {
		return nil, err
	}
	return pcm, nil
}
