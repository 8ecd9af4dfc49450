// ABOUTME: Tests for PCM conversion and transport encoding
// ABOUTME: Covers quantization clamping, round trips, and payload validation
package audio

import (
	"math"
	"testing"
	"time"
)

func TestQuantizeClamping(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1.0, math.MaxInt16},  // 32768 clamps to 32767
		{-1.0, math.MinInt16}, // exactly representable
		{2.0, math.MaxInt16},
		{-2.0, math.MinInt16},
		{0.5, 16384},
		{-0.5, -16384},
	}

	for _, tt := range tests {
		if got := Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRoundTripLossless(t *testing.T) {
	// Already-quantized input must survive encode/decode exactly.
	original := []int16{0, 1, -1, 1234, -1234, math.MaxInt16, math.MinInt16}

	floats := ToFloat32(original)
	requantized := make([]int16, len(floats))
	for i, f := range floats {
		requantized[i] = Quantize(f)
	}

	for i := range original {
		if requantized[i] != original[i] {
			t.Errorf("sample %d: got %d after round trip, want %d", i, requantized[i], original[i])
		}
	}
}

func TestPackUnpackInt16LE(t *testing.T) {
	samples := []int16{0, 256, -256, 32767, -32768}
	packed := PackInt16LE(samples)

	if len(packed) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(packed))
	}

	unpacked, err := UnpackInt16LE(packed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range samples {
		if unpacked[i] != samples[i] {
			t.Errorf("sample %d: got %d, want %d", i, unpacked[i], samples[i])
		}
	}
}

func TestUnpackOddLength(t *testing.T) {
	if _, err := UnpackInt16LE([]byte{1, 2, 3}); err != ErrOddLength {
		t.Errorf("expected ErrOddLength, got %v", err)
	}
}

func TestEncodeFrameTransport(t *testing.T) {
	chunk := EncodeFrame([]float32{0, 0.5, -0.5})

	if chunk.MIMEType != MIMEPCM16k {
		t.Errorf("expected mime %q, got %q", MIMEPCM16k, chunk.MIMEType)
	}

	raw, err := DecodeBase64(chunk.Data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	samples, err := UnpackInt16LE(raw)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}

	want := []int16{0, 16384, -16384}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		byteLen    int
		sampleRate int
		channels   int
		want       time.Duration
	}{
		{48000, 24000, 1, time.Second},
		{24000, 24000, 1, 500 * time.Millisecond},
		{32000, 16000, 1, time.Second},
		{0, 24000, 1, 0},
		{48000, 0, 1, 0},
	}

	for _, tt := range tests {
		if got := Duration(tt.byteLen, tt.sampleRate, tt.channels); got != tt.want {
			t.Errorf("Duration(%d, %d, %d) = %v, want %v", tt.byteLen, tt.sampleRate, tt.channels, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	if got := Level(nil); got != 0 {
		t.Errorf("expected zero level for empty frame, got %v", got)
	}

	got := Level([]float32{0.5, -0.5, 0.5, -0.5})
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("expected level 0.5, got %v", got)
	}
}
