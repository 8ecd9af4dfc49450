// ABOUTME: Microphone capture device using malgo/miniaudio
// ABOUTME: Opens a 16kHz mono float32 stream and feeds samples to a callback
package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/bittu-ai/bittu-go/internal/audio"
)

// Device wraps a miniaudio capture device.
type Device struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Open acquires the default microphone at 16kHz mono and starts capturing.
// Samples arrive on onSamples as normalized float32 at the device's native
// callback cadence. A device or permission failure is returned before any
// callback fires.
func Open(logger *zap.Logger, onSamples func([]float32)) (*Device, error) {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = audio.Channels
	deviceConfig.SampleRate = audio.InputSampleRate
	deviceConfig.Alsa.NoMMap = 1

	d := &Device{
		malgoCtx: malgoCtx,
		logger:   logger,
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSamples, pInputSamples []byte, frameCount uint32) {
			d.mu.Lock()
			closed := d.closed
			d.mu.Unlock()
			if closed || len(pInputSamples) == 0 {
				return
			}
			onSamples(decodeFloat32LE(pInputSamples))
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, fmt.Errorf("failed to open capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	d.device = device
	logger.Info("Capture device started",
		zap.Int("sampleRate", audio.InputSampleRate),
		zap.Int("channels", audio.Channels))

	return d, nil
}

// Close stops the device and releases it. Safe to call more than once.
func (d *Device) Close() error {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if d.device != nil {
		d.device.Uninit()
	}
	if d.malgoCtx != nil {
		_ = d.malgoCtx.Uninit()
		d.malgoCtx.Free()
	}

	d.logger.Info("Capture device stopped")
	return nil
}

// decodeFloat32LE reinterprets raw device bytes as float32 samples.
func decodeFloat32LE(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
