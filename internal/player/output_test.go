// ABOUTME: Tests for speaker output volume handling
// ABOUTME: Covers sample scaling, mute, and volume clamping
package player

import (
	"encoding/binary"
	"testing"
)

func pcmFromSamples(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func samplesFromPCM(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestApplyVolumeScales(t *testing.T) {
	o := &Output{volume: 50}
	scaled := samplesFromPCM(o.applyVolume(pcmFromSamples([]int16{1000, -1000, 0})))

	want := []int16{500, -500, 0}
	for i, s := range scaled {
		if s != want[i] {
			t.Errorf("Sample %d = %d, want %d", i, s, want[i])
		}
	}
}

func TestApplyVolumeMuted(t *testing.T) {
	o := &Output{volume: 100, muted: true}
	scaled := samplesFromPCM(o.applyVolume(pcmFromSamples([]int16{1000, -32768, 32767})))

	for i, s := range scaled {
		if s != 0 {
			t.Errorf("Sample %d = %d, want 0 when muted", i, s)
		}
	}
}

func TestApplyVolumeFullPassthrough(t *testing.T) {
	o := &Output{volume: 100}
	pcm := pcmFromSamples([]int16{123, -456})
	scaled := o.applyVolume(pcm)

	if &scaled[0] != &pcm[0] {
		t.Error("Full volume should not copy the buffer")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	o := &Output{volume: 100}

	o.SetVolume(150)
	if o.Volume() != 100 {
		t.Errorf("Volume = %d, want clamp to 100", o.Volume())
	}

	o.SetVolume(-10)
	if o.Volume() != 0 {
		t.Errorf("Volume = %d, want clamp to 0", o.Volume())
	}
}

func TestSetMuted(t *testing.T) {
	o := &Output{volume: 100}

	o.SetMuted(true)
	if !o.Muted() {
		t.Error("Expected muted state")
	}
	o.SetMuted(false)
	if o.Muted() {
		t.Error("Expected unmuted state")
	}
}
