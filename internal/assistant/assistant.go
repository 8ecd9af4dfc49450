// ABOUTME: Session lifecycle controller for the live voice assistant
// ABOUTME: Single event loop owning capture, session, and playback wiring
package assistant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/audio"
	"github.com/bittu-ai/bittu-go/internal/capture"
	"github.com/bittu-ai/bittu-go/internal/live"
)

// State is the lifecycle state of the assistant.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateConnecting
	StateActive
	StateStopping
	StateErrorClosing
)

// String returns the user-facing status line for a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "ready"
	case StateInitializing:
		return "requesting microphone"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "listening"
	case StateStopping:
		return "stopping"
	case StateErrorClosing:
		return "closing after error"
	default:
		return "unknown"
	}
}

// Error taxonomy. Fatal to the attempt or session; the user restarts
// explicitly.
var (
	ErrPermission = errors.New("microphone unavailable")
	ErrConnection = errors.New("session connection failed")
)

// Session is the duplex connection the controller drives.
type Session interface {
	Events() <-chan live.Event
	Send(audio.Chunk) error
	Close() error
}

// CaptureDevice is an open microphone.
type CaptureDevice interface {
	Close() error
}

// Player schedules synthesized audio for the speaker.
type Player interface {
	Enqueue(pcm []byte, sampleRate, channels int) error
	Interrupt()
}

// Deps are the controller's collaborators. Both open operations may block
// and are run off the event loop.
type Deps struct {
	OpenCapture func(onSamples func([]float32)) (CaptureDevice, error)
	Dial        func(ctx context.Context) (Session, error)
	Player      Player
	Logger      *zap.Logger
}

// Update is a state change pushed to the UI.
type Update interface {
	assistantUpdate()
}

// StateUpdate reports a lifecycle transition. Err is non-nil only when the
// transition was caused by a failure.
type StateUpdate struct {
	State State
	Err   error
}

// TranscriptUpdate is a snapshot of the conversation so far.
type TranscriptUpdate struct {
	Entries      []Entry
	PendingUser  string
	PendingModel string
}

// LevelUpdate reports microphone input level (RMS, 0..1).
type LevelUpdate struct {
	Level float64
}

func (StateUpdate) assistantUpdate()      {}
func (TranscriptUpdate) assistantUpdate() {}
func (LevelUpdate) assistantUpdate()      {}

type command int

const (
	cmdStart command = iota
	cmdStop
)

// internal loop messages
type captureResult struct {
	epoch  int
	device CaptureDevice
	err    error
}

type dialResult struct {
	epoch   int
	session Session
	err     error
}

type capturedSamples struct {
	epoch   int
	samples []float32
}

type sessionEvent struct {
	epoch int
	event live.Event
}

// Controller owns the assistant lifecycle. All state lives on a single
// event loop; capture callbacks and session reads hand off through
// channels, so no two handlers ever run concurrently.
type Controller struct {
	deps Deps

	cmds    chan command
	inbox   chan any
	updates chan Update

	// loop-owned
	state   State
	epoch   int
	device  CaptureDevice
	session Session
	framer  *capture.Framer
	acc     Accumulator
	pending []audio.Chunk
	lastErr error
}

// New creates a controller. Run must be called for it to do anything.
func New(deps Deps) *Controller {
	c := &Controller{
		deps:    deps,
		cmds:    make(chan command, 4),
		inbox:   make(chan any, 256),
		updates: make(chan Update, 256),
		state:   StateIdle,
	}
	c.framer = capture.NewFramer(c.sendChunk, c.reportLevel)
	return c
}

// Updates returns the stream of UI updates. The consumer must drain it.
func (c *Controller) Updates() <-chan Update {
	return c.updates
}

// Start requests a session start. No-op unless the controller is idle.
func (c *Controller) Start() {
	c.cmds <- cmdStart
}

// Stop requests teardown. Safe to call from any state, any number of times.
func (c *Controller) Stop() {
	c.cmds <- cmdStop
}

// Run drives the event loop until ctx is cancelled. It tears down any
// active session before returning.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.teardown()
			c.setState(StateIdle, nil)
			return
		case cmd := <-c.cmds:
			switch cmd {
			case cmdStart:
				c.handleStart(ctx)
			case cmdStop:
				c.handleStop()
			}
		case msg := <-c.inbox:
			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Controller) handleStart(ctx context.Context) {
	if c.state != StateIdle {
		c.deps.Logger.Debug("Start ignored", zap.Stringer("state", c.state))
		return
	}

	c.lastErr = nil
	c.setState(StateInitializing, nil)

	epoch := c.epoch
	go func() {
		device, err := c.deps.OpenCapture(func(samples []float32) {
			// Capture callbacks run on the device thread; never block it.
			select {
			case c.inbox <- capturedSamples{epoch: epoch, samples: samples}:
			default:
			}
		})
		c.inbox <- captureResult{epoch: epoch, device: device, err: err}
	}()
}

func (c *Controller) handleStop() {
	if c.state == StateIdle {
		return
	}
	c.setState(StateStopping, nil)
	c.teardown()
	// Scheduled playback is deliberately left to finish: trailing audio
	// tails off naturally after the session ends.
	c.setState(StateIdle, nil)
}

func (c *Controller) handleMessage(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case captureResult:
		c.handleCaptureResult(ctx, m)
	case dialResult:
		c.handleDialResult(m)
	case capturedSamples:
		if m.epoch != c.epoch {
			return
		}
		if c.state == StateConnecting || c.state == StateActive {
			c.framer.Push(m.samples)
		}
	case sessionEvent:
		if m.epoch != c.epoch {
			return
		}
		c.handleSessionEvent(m.event)
	}
}

func (c *Controller) handleCaptureResult(ctx context.Context, m captureResult) {
	if m.epoch != c.epoch {
		// A stop raced the permission prompt; release the late device.
		if m.device != nil {
			_ = m.device.Close()
		}
		return
	}

	if m.err != nil {
		c.failAttempt(fmt.Errorf("%w: %v", ErrPermission, m.err))
		return
	}

	c.device = m.device
	c.setState(StateConnecting, nil)

	epoch := c.epoch
	go func() {
		session, err := c.deps.Dial(ctx)
		c.inbox <- dialResult{epoch: epoch, session: session, err: err}
	}()
}

func (c *Controller) handleDialResult(m dialResult) {
	if m.epoch != c.epoch {
		if m.session != nil {
			_ = m.session.Close()
		}
		return
	}

	if m.err != nil {
		c.failAttempt(fmt.Errorf("%w: %v", ErrConnection, m.err))
		return
	}

	c.session = m.session

	// Frames captured before the dial completed go out now; the session
	// buffers anything sent before the remote acknowledges setup.
	for _, chunk := range c.pending {
		if err := c.session.Send(chunk); err != nil {
			c.deps.Logger.Warn("Failed to send buffered frame", zap.Error(err))
			break
		}
	}
	c.pending = nil

	epoch := c.epoch
	events := m.session.Events()
	go func() {
		for event := range events {
			c.inbox <- sessionEvent{epoch: epoch, event: event}
		}
	}()
}

func (c *Controller) handleSessionEvent(event live.Event) {
	switch e := event.(type) {
	case live.OpenedEvent:
		c.setState(StateActive, nil)
	case live.InputTranscriptEvent:
		c.acc.AddUser(e.Text)
		c.pushTranscript()
	case live.OutputTranscriptEvent:
		c.acc.AddModel(e.Text)
		c.pushTranscript()
	case live.TurnCompleteEvent:
		c.acc.FlushTurn()
		c.pushTranscript()
	case live.AudioEvent:
		if err := c.deps.Player.Enqueue(e.PCM, e.SampleRate, e.Channels); err != nil {
			// Malformed chunk: drop it, the session continues.
			c.deps.Logger.Warn("Dropped undecodable audio chunk", zap.Error(err))
		}
	case live.InterruptedEvent:
		c.deps.Player.Interrupt()
	case live.ClosedEvent:
		c.handleRemoteClose(e.Err)
	}
}

func (c *Controller) handleRemoteClose(err error) {
	if c.state == StateIdle || c.state == StateStopping {
		// Local stop already tore everything down.
		return
	}
	if err != nil {
		c.failAttempt(fmt.Errorf("%w: %v", ErrConnection, err))
		return
	}
	c.setState(StateStopping, nil)
	c.teardown()
	c.setState(StateIdle, nil)
}

// failAttempt tears down whatever was acquired and lands in Idle carrying
// the error.
func (c *Controller) failAttempt(err error) {
	c.deps.Logger.Error("Session attempt failed", zap.Error(err))
	c.setState(StateErrorClosing, err)
	c.teardown()
	c.setState(StateIdle, err)
}

// teardown releases the capture device and session. Idempotent: both
// handles are nil-checked and cleared, and the epoch bump makes any
// in-flight async result stale.
func (c *Controller) teardown() {
	c.epoch++
	if c.device != nil {
		_ = c.device.Close()
		c.device = nil
	}
	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
	c.pending = nil
}

func (c *Controller) sendChunk(chunk audio.Chunk) {
	if c.session == nil {
		c.pending = append(c.pending, chunk)
		return
	}
	if err := c.session.Send(chunk); err != nil {
		c.deps.Logger.Warn("Failed to send audio frame", zap.Error(err))
	}
}

func (c *Controller) reportLevel(level float64) {
	c.push(LevelUpdate{Level: level})
}

func (c *Controller) pushTranscript() {
	c.push(TranscriptUpdate{
		Entries:      c.acc.Entries(),
		PendingUser:  c.acc.PendingUser(),
		PendingModel: c.acc.PendingModel(),
	})
}

func (c *Controller) setState(state State, err error) {
	c.state = state
	if err != nil {
		c.lastErr = err
	}
	c.push(StateUpdate{State: state, Err: c.lastErr})
}

// push delivers an update without ever blocking the loop. A consumer that
// has fallen far behind loses updates rather than stalling the pipeline.
func (c *Controller) push(u Update) {
	select {
	case c.updates <- u:
	default:
		c.deps.Logger.Debug("Dropped UI update")
	}
}
