// ABOUTME: Tests for the gapless playback scheduler
// ABOUTME: Uses a fake clock and recording sink for deterministic timing
package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/audio"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordedStart struct {
	pcm      []byte
	delay    time.Duration
	playback *fakePlayback
}

type fakePlayback struct {
	mu      sync.Mutex
	stopped bool
}

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

func (p *fakePlayback) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

type recordingSink struct {
	mu     sync.Mutex
	starts []recordedStart
	err    error
}

func (s *recordingSink) Start(pcm []byte, sampleRate, channels int, delay time.Duration) (Playback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	playback := &fakePlayback{}
	s.starts = append(s.starts, recordedStart{pcm: pcm, delay: delay, playback: playback})
	return playback, nil
}

func (s *recordingSink) Starts() []recordedStart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedStart(nil), s.starts...)
}

// pcmOf returns a chunk with the given duration at 24kHz mono.
func pcmOf(d time.Duration) []byte {
	samples := int(d.Milliseconds()) * 24
	return make([]byte, samples*2)
}

func TestEnqueueChainsChunksGaplessly(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, zap.NewNop())

	// Three half-second chunks land at once; they must queue back to back.
	for i := 0; i < 3; i++ {
		if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	starts := sink.Starts()
	if len(starts) != 3 {
		t.Fatalf("Expected 3 starts, got %d", len(starts))
	}
	wantDelays := []time.Duration{0, 500 * time.Millisecond, 1000 * time.Millisecond}
	for i, want := range wantDelays {
		if starts[i].delay != want {
			t.Errorf("Chunk %d delay = %v, want %v", i, starts[i].delay, want)
		}
	}
}

func TestCursorNeverSchedulesInThePast(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, zap.NewNop())

	if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// The queue drained and time moved past the cursor.
	clock.Advance(2 * time.Second)

	if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	starts := sink.Starts()
	if starts[1].delay != 0 {
		t.Errorf("Chunk after idle gap delayed %v, want immediate start", starts[1].delay)
	}
}

func TestInterruptStopsAllAndResetsTimeline(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, zap.NewNop())

	for i := 0; i < 2; i++ {
		if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if s.Active() != 2 {
		t.Fatalf("Expected 2 active chunks, got %d", s.Active())
	}

	s.Interrupt()

	for i, start := range sink.Starts() {
		if !start.playback.Stopped() {
			t.Errorf("Chunk %d not stopped by Interrupt", i)
		}
	}
	if s.Active() != 0 {
		t.Errorf("Expected 0 active chunks after Interrupt, got %d", s.Active())
	}

	// The next chunk starts immediately, not where the old timeline ended.
	if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
		t.Fatalf("Enqueue after Interrupt failed: %v", err)
	}
	starts := sink.Starts()
	if got := starts[len(starts)-1].delay; got != 0 {
		t.Errorf("Chunk after Interrupt delayed %v, want immediate start", got)
	}
}

func TestEnqueueEmptyChunkIsNoOp(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, zap.NewNop())

	if err := s.Enqueue(nil, 24000, 1); err != nil {
		t.Fatalf("Enqueue of empty chunk failed: %v", err)
	}
	if len(sink.Starts()) != 0 {
		t.Error("Empty chunk reached the sink")
	}

	// The cursor must not have advanced.
	if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if got := sink.Starts()[0].delay; got != 0 {
		t.Errorf("Chunk after empty delayed %v, want immediate start", got)
	}
}

func TestEnqueueOddLengthRejected(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, zap.NewNop())

	err := s.Enqueue([]byte{0x01, 0x02, 0x03}, 24000, 1)
	if !errors.Is(err, audio.ErrOddLength) {
		t.Errorf("Expected ErrOddLength, got %v", err)
	}
	if len(sink.Starts()) != 0 {
		t.Error("Odd-length chunk reached the sink")
	}
}

func TestEnqueueSinkErrorLeavesCursorAlone(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{err: errors.New("device gone")}
	s := NewScheduler(clock, sink, zap.NewNop())

	if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err == nil {
		t.Fatal("Expected sink error to propagate")
	}

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	if err := s.Enqueue(pcmOf(500*time.Millisecond), 24000, 1); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if got := sink.Starts()[0].delay; got != 0 {
		t.Errorf("Chunk after failed start delayed %v, want immediate start", got)
	}
}
