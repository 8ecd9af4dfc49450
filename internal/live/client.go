// ABOUTME: Duplex streaming session client for the live voice service
// ABOUTME: Handles dial, setup handshake, send buffering, and event dispatch
package live

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/audio"
)

// DefaultEndpoint is the bidirectional generation endpoint of the hosted
// service. The API key is appended as a query parameter.
const DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

const dialTimeout = 15 * time.Second

// ErrMissingAPIKey reports a session opened without a credential.
var ErrMissingAPIKey = errors.New("api key is required")

// Config holds session configuration.
type Config struct {
	Endpoint          string // defaults to DefaultEndpoint
	APIKey            string
	Model             string
	Voice             string
	SystemInstruction string
}

// Session is a live duplex connection. Events are delivered on Events() in
// receipt order; the consumer must drain the channel until it closes, which
// happens after the single terminal ClosedEvent.
type Session struct {
	conn   *websocket.Conn
	logger *zap.Logger

	events chan Event
	done   chan struct{}

	writeMu sync.Mutex
	ready   bool
	pending []audio.Chunk

	closed        atomic.Bool
	closeOnce     sync.Once
	closedEmitted sync.Once
}

// Connect dials the service and sends the session setup frame. The session
// is not yet open on return: an OpenedEvent is emitted once the service
// acknowledges setup, and chunks sent before then are buffered.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid live endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", cfg.APIKey)
	u.RawQuery = q.Encode()

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial live session: %w", err)
	}

	setup := setupMessage{
		Setup: setupPayload{
			Model: cfg.Model,
			GenerationConfig: generationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &speechConfig{
					VoiceConfig: voiceConfig{
						PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: cfg.Voice},
					},
				},
			},
		},
	}
	if cfg.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &content{Parts: []textPart{{Text: cfg.SystemInstruction}}}
	}

	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send session setup: %w", err)
	}

	s := &Session{
		conn:   conn,
		logger: logger,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}

	go s.readLoop()

	logger.Info("Live session dialed", zap.String("model", cfg.Model))
	return s, nil
}

// Events returns the inbound event stream.
func (s *Session) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.events
}

// Send forwards one encoded capture chunk. Fire and forget: there is no
// per-chunk acknowledgement. Chunks sent before the session finishes opening
// are buffered and flushed in order once it does.
func (s *Session) Send(chunk audio.Chunk) error {
	if s == nil {
		return errors.New("session is not open")
	}
	if s.closed.Load() {
		return errors.New("session is closed")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.ready {
		s.pending = append(s.pending, chunk)
		return nil
	}
	return s.writeChunkLocked(chunk)
}

func (s *Session) writeChunkLocked(chunk audio.Chunk) error {
	msg := realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []mediaChunk{{Data: chunk.Data, MIMEType: chunk.MIMEType}},
		},
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send audio chunk: %w", err)
	}
	return nil
}

// markReady flushes chunks buffered before setup completed.
func (s *Session) markReady() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.ready = true
	for _, chunk := range s.pending {
		if err := s.writeChunkLocked(chunk); err != nil {
			s.logger.Warn("Failed to flush buffered chunk", zap.Error(err))
			break
		}
	}
	s.pending = nil
}

// Close terminates the session. Idempotent, and safe on a nil handle.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	return nil
}

// readLoop reads, demultiplexes, and dispatches inbound frames until the
// connection reaches a terminal state.
func (s *Session) readLoop() {
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.emitClosed(nil)
			} else {
				s.emitClosed(err)
			}
			close(s.done)
			return
		}

		events, err := decodeServerFrame(data)
		if err != nil {
			// Only that chunk is lost; the session continues.
			s.logger.Warn("Dropped malformed inbound payload", zap.Error(err))
		}
		for _, event := range events {
			if _, ok := event.(OpenedEvent); ok {
				s.markReady()
			}
			s.events <- event
		}
	}
}

func (s *Session) emitClosed(err error) {
	s.closedEmitted.Do(func() {
		s.closed.Store(true)
		if err != nil {
			s.logger.Warn("Live session closed with error", zap.Error(err))
		} else {
			s.logger.Info("Live session closed")
		}
		s.events <- ClosedEvent{Err: err}
	})
}
