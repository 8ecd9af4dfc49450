// ABOUTME: Tests for the capture framer
// ABOUTME: Tests fixed-window framing across arbitrary callback sizes
package capture

import (
	"testing"

	"github.com/bittu-ai/bittu-go/internal/audio"
)

func TestFramerEmitsFixedWindows(t *testing.T) {
	var chunks []audio.Chunk
	f := NewFramer(func(c audio.Chunk) { chunks = append(chunks, c) }, nil)

	// Two windows plus a remainder, delivered in uneven callbacks.
	total := audio.FrameSamples*2 + 100
	delivered := 0
	for _, n := range []int{1000, 3000, 2000, total - 6000} {
		f.Push(make([]float32, n))
		delivered += n
	}

	if delivered != total {
		t.Fatalf("test delivered %d samples, expected %d", delivered, total)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	if f.Buffered() != 100 {
		t.Errorf("expected 100 buffered samples, got %d", f.Buffered())
	}

	for i, c := range chunks {
		if c.MIMEType != audio.MIMEPCM16k {
			t.Errorf("chunk %d: mime %q, want %q", i, c.MIMEType, audio.MIMEPCM16k)
		}
		raw, err := audio.DecodeBase64(c.Data)
		if err != nil {
			t.Fatalf("chunk %d: decode failed: %v", i, err)
		}
		if len(raw) != audio.FrameSamples*2 {
			t.Errorf("chunk %d: %d bytes, want %d", i, len(raw), audio.FrameSamples*2)
		}
	}
}

func TestFramerExactWindow(t *testing.T) {
	count := 0
	f := NewFramer(func(audio.Chunk) { count++ }, nil)

	f.Push(make([]float32, audio.FrameSamples))

	if count != 1 {
		t.Errorf("expected 1 chunk, got %d", count)
	}
	if f.Buffered() != 0 {
		t.Errorf("expected empty window, got %d samples", f.Buffered())
	}
}

func TestFramerPreservesSampleValues(t *testing.T) {
	var chunk audio.Chunk
	f := NewFramer(func(c audio.Chunk) { chunk = c }, nil)

	window := make([]float32, audio.FrameSamples)
	window[0] = 0.5
	window[audio.FrameSamples-1] = -0.5
	f.Push(window)

	raw, err := audio.DecodeBase64(chunk.Data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	samples, err := audio.UnpackInt16LE(raw)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}

	if samples[0] != 16384 {
		t.Errorf("first sample: got %d, want 16384", samples[0])
	}
	if samples[audio.FrameSamples-1] != -16384 {
		t.Errorf("last sample: got %d, want -16384", samples[audio.FrameSamples-1])
	}
}

func TestFramerReportsLevel(t *testing.T) {
	var levels []float64
	f := NewFramer(func(audio.Chunk) {}, func(l float64) { levels = append(levels, l) })

	f.Push([]float32{0.5, -0.5})

	if len(levels) != 1 {
		t.Fatalf("expected 1 level report, got %d", len(levels))
	}
	if levels[0] < 0.49 || levels[0] > 0.51 {
		t.Errorf("expected level ~0.5, got %v", levels[0])
	}
}
