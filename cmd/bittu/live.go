// ABOUTME: Live voice mode wiring for the CLI
// ABOUTME: Connects controller, capture, session, playback, and TUI
package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/assistant"
	"github.com/bittu-ai/bittu-go/internal/audio"
	"github.com/bittu-ai/bittu-go/internal/capture"
	"github.com/bittu-ai/bittu-go/internal/config"
	"github.com/bittu-ai/bittu-go/internal/live"
	"github.com/bittu-ai/bittu-go/internal/player"
	"github.com/bittu-ai/bittu-go/internal/ui"
)

func runLive(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("live", flag.ExitOnError)
	logFile := fs.String("log-file", "bittu.log", "Log file path")
	autoStart := fs.Bool("start", false, "Start a session immediately")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to a file.
	logger, err := newFileLogger(*logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	output, err := player.NewOutput(audio.OutputSampleRate, audio.Channels, logger)
	if err != nil {
		return err
	}
	scheduler := player.NewScheduler(player.SystemClock, output, logger)

	controller := assistant.New(assistant.Deps{
		OpenCapture: func(onSamples func([]float32)) (assistant.CaptureDevice, error) {
			return capture.Open(logger, onSamples)
		},
		Dial: func(dialCtx context.Context) (assistant.Session, error) {
			return live.Connect(dialCtx, live.Config{
				Endpoint:          cfg.LiveEndpoint,
				APIKey:            cfg.APIKey,
				Model:             cfg.LiveModel,
				Voice:             cfg.LiveVoice,
				SystemInstruction: cfg.SystemInstruction,
			}, logger)
		},
		Player: scheduler,
		Logger: logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go controller.Run(runCtx)

	control := ui.NewControl()
	prog, err := ui.Run(control)
	if err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	// Bridge controller updates into the TUI and key commands back out.
	go func() {
		active := false
		for {
			select {
			case <-runCtx.Done():
				return
			case update := <-controller.Updates():
				switch u := update.(type) {
				case assistant.StateUpdate:
					active = u.State != assistant.StateIdle
					prog.Send(ui.StateMsg{State: u.State, Err: u.Err})
				case assistant.TranscriptUpdate:
					prog.Send(ui.TranscriptMsg{
						Entries:      u.Entries,
						PendingUser:  u.PendingUser,
						PendingModel: u.PendingModel,
					})
				case assistant.LevelUpdate:
					prog.Send(ui.LevelMsg{Level: u.Level})
				}
			case <-control.Toggle:
				if active {
					controller.Stop()
				} else {
					controller.Start()
				}
			case volume := <-control.Volume:
				output.SetVolume(volume)
			case muted := <-control.Mute:
				output.SetMuted(muted)
			case <-control.Quit:
				controller.Stop()
				cancel()
			}
		}
	}()

	if *autoStart {
		controller.Start()
	}

	logger.Info("Live mode started", zap.String("model", cfg.LiveModel))

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
