// ABOUTME: Gapless playback scheduler for streamed response audio
// ABOUTME: Chains chunks on a monotonic cursor and supports barge-in
package player

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/audio"
)

// Playback is one chunk being (or about to be) played.
type Playback interface {
	Stop()
}

// Sink starts playback of raw PCM after the given delay. The scheduler
// computes timing; the sink only honors it.
type Sink interface {
	Start(pcm []byte, sampleRate, channels int, delay time.Duration) (Playback, error)
}

// Clock abstracts wall time so scheduling is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used outside tests.
var SystemClock Clock = systemClock{}

type handle struct {
	playback Playback
	release  *time.Timer
}

// Scheduler plays chunks back to back. Each chunk starts at the later of
// now and the end of the previous chunk, so streamed audio is gapless even
// when chunks arrive faster than real time.
type Scheduler struct {
	clock  Clock
	sink   Sink
	logger *zap.Logger

	mu      sync.Mutex
	cursor  time.Time
	handles map[uuid.UUID]handle
}

// NewScheduler creates a scheduler over the given sink.
func NewScheduler(clock Clock, sink Sink, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:   clock,
		sink:    sink,
		logger:  logger,
		handles: make(map[uuid.UUID]handle),
	}
}

// Enqueue schedules one PCM chunk after everything already queued. A
// zero-length chunk is a no-op; an odd-length chunk is rejected without
// advancing the cursor.
func (s *Scheduler) Enqueue(pcm []byte, sampleRate, channels int) error {
	if len(pcm) == 0 {
		return nil
	}
	if len(pcm)%2 != 0 {
		return audio.ErrOddLength
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.cursor.Before(now) {
		s.cursor = now
	}
	delay := s.cursor.Sub(now)
	duration := audio.Duration(len(pcm), sampleRate, channels)

	playback, err := s.sink.Start(pcm, sampleRate, channels, delay)
	if err != nil {
		return err
	}

	id := uuid.New()
	release := time.AfterFunc(delay+duration, func() {
		s.mu.Lock()
		delete(s.handles, id)
		s.mu.Unlock()
	})
	s.handles[id] = handle{playback: playback, release: release}
	s.cursor = s.cursor.Add(duration)

	return nil
}

// Interrupt stops every queued and playing chunk and resets the timeline,
// so the next Enqueue starts immediately.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.handles {
		h.release.Stop()
		h.playback.Stop()
		delete(s.handles, id)
	}
	s.cursor = time.Time{}

	s.logger.Debug("Playback interrupted")
}

// Active returns the number of chunks queued or playing.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}
