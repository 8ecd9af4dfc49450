// ABOUTME: Speaker output built on the oto library
// ABOUTME: One process-wide device context with software volume control
package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// oto permits a single context per process, so it is created once and kept
// for the life of the process. Stopping a session does not release the
// device; reopening it adds audible latency to the next session start.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func sharedContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Output plays PCM on the default speaker. It implements Sink.
type Output struct {
	otoCtx     *oto.Context
	logger     *zap.Logger
	sampleRate int
	channels   int

	mu     sync.Mutex
	volume int
	muted  bool
}

// NewOutput opens the speaker at the given fixed format.
func NewOutput(sampleRate, channels int, logger *zap.Logger) (*Output, error) {
	ctx, err := sharedContext(sampleRate, channels)
	if err != nil {
		return nil, err
	}

	logger.Info("Audio output ready",
		zap.Int("sample_rate", sampleRate),
		zap.Int("channels", channels))

	return &Output{
		otoCtx:     ctx,
		logger:     logger,
		sampleRate: sampleRate,
		channels:   channels,
		volume:     100,
	}, nil
}

// Start begins playback of pcm after delay.
func (o *Output) Start(pcm []byte, sampleRate, channels int, delay time.Duration) (Playback, error) {
	if sampleRate != o.sampleRate || channels != o.channels {
		return nil, fmt.Errorf("unsupported format %dHz/%dch, output is %dHz/%dch",
			sampleRate, channels, o.sampleRate, o.channels)
	}

	samples := o.applyVolume(pcm)

	p := &otoPlayback{}
	p.timer = time.AfterFunc(delay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.stopped {
			return
		}
		p.player = o.otoCtx.NewPlayer(bytes.NewReader(samples))
		p.player.Play()
	})

	return p, nil
}

// PlayAll plays pcm to completion. Used for one-shot speech synthesis.
func (o *Output) PlayAll(pcm []byte, sampleRate, channels int) error {
	playback, err := o.Start(pcm, sampleRate, channels, 0)
	if err != nil {
		return err
	}
	p := playback.(*otoPlayback)

	// Wait for the delayed start, then for drain.
	for {
		p.mu.Lock()
		player := p.player
		p.mu.Unlock()
		if player != nil && !player.IsPlaying() {
			return player.Close()
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// SetVolume sets playback volume (0-100).
func (o *Output) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.mu.Lock()
	o.volume = volume
	o.mu.Unlock()
}

// SetMuted sets the mute state.
func (o *Output) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.mu.Unlock()
}

// Volume returns the current volume.
func (o *Output) Volume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// Muted returns the mute state.
func (o *Output) Muted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// applyVolume scales int16 samples by the current volume.
func (o *Output) applyVolume(pcm []byte) []byte {
	o.mu.Lock()
	volume, muted := o.volume, o.muted
	o.mu.Unlock()

	if volume == 100 && !muted {
		return pcm
	}

	multiplier := float64(volume) / 100.0
	if muted {
		multiplier = 0.0
	}

	scaled := make([]byte, len(pcm))
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(scaled[i:], uint16(int16(float64(sample)*multiplier)))
	}
	return scaled
}

// otoPlayback is one scheduled chunk on the speaker.
type otoPlayback struct {
	mu      sync.Mutex
	timer   *time.Timer
	player  *oto.Player
	stopped bool
}

// Stop cancels a pending start or halts playback in progress.
func (p *otoPlayback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	p.timer.Stop()
	if p.player != nil {
		p.player.Pause()
		_ = p.player.Close()
		p.player = nil
	}
}
