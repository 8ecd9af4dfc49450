// ABOUTME: Entry point for the Bittu assistant CLI
// ABOUTME: Dispatches the live voice mode and the one-shot modes
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/audio"
	"github.com/bittu-ai/bittu-go/internal/config"
	"github.com/bittu-ai/bittu-go/internal/gemini"
	"github.com/bittu-ai/bittu-go/internal/player"
	"github.com/bittu-ai/bittu-go/internal/version"
)

const usage = `Usage: bittu <command> [flags] [args]

Commands:
  live      interactive voice conversation (TUI)
  chat      one text prompt, optionally grounded with search/maps
  imagine   generate an image from a prompt
  edit      edit an existing image with a prompt
  video     render a video from a prompt (takes minutes)
  analyze   answer a question about an image
  speak     synthesize text to speech and play it
  version   print version information
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "live":
		err = runLive(ctx, cfg, args)
	case "chat":
		err = runChat(ctx, cfg, args)
	case "imagine":
		err = runImagine(ctx, cfg, args)
	case "edit":
		err = runEdit(ctx, cfg, args)
	case "video":
		err = runVideo(ctx, cfg, args)
	case "analyze":
		err = runAnalyze(ctx, cfg, args)
	case "speak":
		err = runSpeak(ctx, cfg, args)
	case "version":
		fmt.Printf("%s %s (%s)\n", version.Product, version.Version, version.Manufacturer)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "bittu %s: %v\n", command, err)
		os.Exit(1)
	}
}

// newFileLogger logs to a file so the TUI owns the terminal.
func newFileLogger(path string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{path}
	logCfg.ErrorOutputPaths = []string{path}
	return logCfg.Build()
}

// newConsoleLogger logs to stderr for the one-shot modes.
func newConsoleLogger(verbose bool) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stderr"}
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return logCfg.Build()
}

// newClient builds the one-shot mode client with the shared flags applied.
func newClient(ctx context.Context, cfg config.Config, verbose bool) (*gemini.Client, *zap.Logger, error) {
	logger, err := newConsoleLogger(verbose)
	if err != nil {
		return nil, nil, err
	}
	client, err := gemini.NewClient(ctx, cfg.APIKey, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

func promptFrom(fs *flag.FlagSet) (string, error) {
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return "", fmt.Errorf("a prompt is required")
	}
	return prompt, nil
}

func runChat(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	complexPrompt := fs.Bool("complex", false, "Route to the larger model with a thinking budget")
	search := fs.Bool("search", false, "Ground the answer with web search")
	maps := fs.Bool("maps", false, "Ground the answer with map data")
	lat := fs.Float64("lat", 0, "Latitude anchor for map grounding")
	lng := fs.Float64("lng", 0, "Longitude anchor for map grounding")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt, err := promptFrom(fs)
	if err != nil {
		return err
	}

	client, logger, err := newClient(ctx, cfg, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	req := gemini.ChatRequest{
		Prompt:    prompt,
		Complex:   *complexPrompt,
		UseSearch: *search,
		UseMaps:   *maps,
	}
	if *maps && (*lat != 0 || *lng != 0) {
		req.Location = &gemini.Location{Latitude: *lat, Longitude: *lng}
	}

	resp, err := client.Chat(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(resp.Text)
	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range resp.Sources {
			fmt.Printf("  %s — %s\n", source.Title, source.URI)
		}
	}
	return nil
}

func runImagine(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("imagine", flag.ExitOnError)
	aspect := fs.String("aspect", "1:1", "Aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	out := fs.String("o", "bittu-image.jpg", "Output file")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt, err := promptFrom(fs)
	if err != nil {
		return err
	}

	client, logger, err := newClient(ctx, cfg, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	image, err := client.GenerateImage(ctx, prompt, *aspect)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, image, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(image))
	return nil
}

func runEdit(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	imagePath := fs.String("image", "", "Image file to edit (required)")
	out := fs.String("o", "bittu-edited.png", "Output file")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt, err := promptFrom(fs)
	if err != nil {
		return err
	}
	if *imagePath == "" {
		return fmt.Errorf("-image is required")
	}

	image, mimeType, err := readImage(*imagePath)
	if err != nil {
		return err
	}

	client, logger, err := newClient(ctx, cfg, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	edited, _, err := client.EditImage(ctx, image, mimeType, prompt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, edited, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(edited))
	return nil
}

func runVideo(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	aspect := fs.String("aspect", "16:9", "Aspect ratio (16:9, 9:16)")
	imagePath := fs.String("image", "", "Optional first-frame image")
	out := fs.String("o", "bittu-video.mp4", "Output file")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt, err := promptFrom(fs)
	if err != nil {
		return err
	}

	req := gemini.VideoRequest{
		Prompt:      prompt,
		AspectRatio: *aspect,
		OnProgress: func(message string) {
			fmt.Println(message)
		},
	}
	if *imagePath != "" {
		image, mimeType, err := readImage(*imagePath)
		if err != nil {
			return err
		}
		req.Image = image
		req.ImageMIME = mimeType
	}

	client, logger, err := newClient(ctx, cfg, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	video, err := client.GenerateVideo(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, video, 0644); err != nil {
		return fmt.Errorf("failed to write video: %w", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(video))
	return nil
}

func runAnalyze(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	imagePath := fs.String("image", "", "Image file to analyze (required)")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imagePath == "" {
		return fmt.Errorf("-image is required")
	}
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		prompt = "Describe this image."
	}

	image, mimeType, err := readImage(*imagePath)
	if err != nil {
		return err
	}

	client, logger, err := newClient(ctx, cfg, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	answer, err := client.AnalyzeImage(ctx, image, mimeType, prompt)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func runSpeak(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("speak", flag.ExitOnError)
	voice := fs.String("voice", cfg.SpeechVoice, "Prebuilt voice name")
	out := fs.String("o", "", "Also write raw PCM to this file")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := promptFrom(fs)
	if err != nil {
		return err
	}

	client, logger, err := newClient(ctx, cfg, *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pcm, err := client.Synthesize(ctx, text, *voice)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := os.WriteFile(*out, pcm, 0644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
	}

	output, err := player.NewOutput(audio.OutputSampleRate, audio.Channels, logger)
	if err != nil {
		return err
	}
	return output.PlayAll(pcm, audio.OutputSampleRate, audio.Channels)
}

// readImage loads a file and sniffs a mime type from its extension.
func readImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, imageMIME(path), nil
}

func imageMIME(path string) string {
	switch strings.ToLower(path[strings.LastIndex(path, ".")+1:]) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
