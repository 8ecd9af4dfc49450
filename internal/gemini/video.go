// ABOUTME: Video generation with long-poll progress reporting
// ABOUTME: Polls the async render job and downloads the finished file
package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const videoPollInterval = 10 * time.Second

// progressMessages rotate while the render job runs.
var progressMessages = []string{
	"Warming up the pixels...",
	"Directing the virtual movie...",
	"Rendering the digital masterpiece...",
	"Almost there, adding final touches...",
}

// progressMessage returns the message for the nth poll.
func progressMessage(poll int) string {
	return progressMessages[poll%len(progressMessages)]
}

func validVideoAspect(ratio string) bool {
	for _, r := range VideoAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// VideoAspectRatios are the ratios the video model accepts.
var VideoAspectRatios = []string{"16:9", "9:16"}

// VideoRequest describes one render job. Image is an optional first frame.
type VideoRequest struct {
	Prompt    string
	Image     []byte
	ImageMIME string
	// AspectRatio defaults to 16:9 when empty.
	AspectRatio string
	// OnProgress, when set, receives a status message on each poll.
	OnProgress func(message string)
}

// GenerateVideo starts a render job, polls it to completion, and returns
// the finished video bytes. The job typically takes minutes; ctx bounds it.
func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) ([]byte, error) {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "16:9"
	}
	if !validVideoAspect(aspect) {
		return nil, fmt.Errorf("unsupported aspect ratio %q (valid: %v)", aspect, VideoAspectRatios)
	}

	var image *genai.Image
	if len(req.Image) > 0 {
		image = &genai.Image{ImageBytes: req.Image, MIMEType: req.ImageMIME}
	}

	operation, err := c.genai.Models.GenerateVideos(ctx, ModelVideo, req.Prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    aspect,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start video render: %w", err)
	}

	c.logger.Info("Video render started")

	for poll := 0; !operation.Done; poll++ {
		if req.OnProgress != nil {
			req.OnProgress(progressMessage(poll))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(videoPollInterval):
		}

		operation, err = c.genai.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll video render: %w", err)
		}
	}

	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil, ErrEmptyResponse
	}
	video := operation.Response.GeneratedVideos[0].Video
	if video == nil {
		return nil, ErrEmptyResponse
	}
	if len(video.VideoBytes) > 0 {
		return video.VideoBytes, nil
	}
	if video.URI == "" {
		return nil, ErrEmptyResponse
	}

	return c.downloadVideo(ctx, video.URI)
}

// downloadVideo fetches the finished file. The download endpoint expects
// the API key as a query parameter.
func (c *Client) downloadVideo(ctx context.Context, uri string) ([]byte, error) {
	signed, err := appendKey(uri, c.apiKey)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("video download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("video download failed: %w", err)
	}

	c.logger.Info("Video downloaded", zap.Int("bytes", len(data)))
	return data, nil
}

// appendKey adds the API key query parameter to a download URI.
func appendKey(uri, key string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || !strings.HasPrefix(parsed.Scheme, "http") {
		return "", fmt.Errorf("invalid download uri %q", uri)
	}
	q := parsed.Query()
	q.Set("key", key)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
