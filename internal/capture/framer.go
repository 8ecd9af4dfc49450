// ABOUTME: Regroups raw capture callbacks into fixed-size encoded frames
// ABOUTME: Quantizes float32 windows to int16 chunks and reports mic level
package capture

import (
	"github.com/bittu-ai/bittu-go/internal/audio"
)

// Framer slices the capture stream into fixed windows of audio.FrameSamples
// samples, encodes each window for transport, and hands it to send. It holds
// no queue beyond the partial window in progress: if send cannot take a frame
// it is simply gone, favoring recency over completeness.
type Framer struct {
	send    func(audio.Chunk)
	onLevel func(float64)

	window []float32
}

// NewFramer creates a framer. onLevel may be nil.
func NewFramer(send func(audio.Chunk), onLevel func(float64)) *Framer {
	return &Framer{
		send:    send,
		onLevel: onLevel,
		window:  make([]float32, 0, audio.FrameSamples),
	}
}

// Push accepts a capture callback's samples, emitting one encoded chunk per
// completed window. Not safe for concurrent use; feed it from one goroutine.
func (f *Framer) Push(samples []float32) {
	if f.onLevel != nil && len(samples) > 0 {
		f.onLevel(audio.Level(samples))
	}

	for len(samples) > 0 {
		need := audio.FrameSamples - len(f.window)
		if need > len(samples) {
			f.window = append(f.window, samples...)
			return
		}

		f.window = append(f.window, samples[:need]...)
		samples = samples[need:]

		f.send(audio.EncodeFrame(f.window))
		f.window = f.window[:0]
	}
}

// Buffered returns the number of samples held in the partial window.
func (f *Framer) Buffered() int {
	return len(f.window)
}
