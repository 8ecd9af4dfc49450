// ABOUTME: PCM sample conversion and transport encoding
// ABOUTME: int16 little-endian quantization, base64 framing, level measurement
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"time"
)

const (
	// InputSampleRate is the microphone capture rate expected by the service.
	InputSampleRate = 16000

	// OutputSampleRate is the rate of synthesized audio from the service.
	OutputSampleRate = 24000

	// Channels is mono everywhere; the service neither accepts nor produces stereo.
	Channels = 1

	// FrameSamples is the fixed capture window size.
	FrameSamples = 4096

	// MIMEPCM16k tags outbound capture chunks.
	MIMEPCM16k = "audio/pcm;rate=16000"
)

// ErrOddLength reports a 16-bit PCM payload that is not a whole number of samples.
var ErrOddLength = errors.New("pcm payload length is not a multiple of 2")

// Chunk is the transport unit for one encoded audio frame.
type Chunk struct {
	Data     string // base64 of little-endian int16 samples
	MIMEType string
}

// Quantize converts a float sample in [-1, 1] to int16 by rounding and clamping.
func Quantize(s float32) int16 {
	v := math.Round(float64(s) * 32768)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// PackInt16LE packs samples into little-endian bytes.
func PackInt16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// UnpackInt16LE parses little-endian bytes into samples.
func UnpackInt16LE(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, ErrOddLength
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// ToFloat32 normalizes int16 samples to [-1, 1).
func ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// EncodeFrame quantizes one capture frame and wraps it for transport.
func EncodeFrame(samples []float32) Chunk {
	ints := make([]int16, len(samples))
	for i, s := range samples {
		ints[i] = Quantize(s)
	}
	return Chunk{
		Data:     base64.StdEncoding.EncodeToString(PackInt16LE(ints)),
		MIMEType: MIMEPCM16k,
	}
}

// DecodeBase64 reverses the transport encoding back to raw PCM bytes.
func DecodeBase64(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

// Duration computes the play time of a 16-bit PCM payload.
func Duration(byteLen, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := byteLen / 2 / channels
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// Level computes the RMS level of a frame, in [0, 1].
func Level(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
