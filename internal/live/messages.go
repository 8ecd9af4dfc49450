// ABOUTME: Wire types and event demultiplexing for the live audio session
// ABOUTME: Maps duplex JSON frames to a closed union of session events
package live

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bittu-ai/bittu-go/internal/audio"
)

// setupMessage is the first outbound frame of a session.
type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string           `json:"model"`
	GenerationConfig         generationConfig `json:"generationConfig"`
	SystemInstruction        *content         `json:"systemInstruction,omitempty"`
	InputAudioTranscription  struct{}         `json:"inputAudioTranscription"`
	OutputAudioTranscription struct{}         `json:"outputAudioTranscription"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type content struct {
	Parts []textPart `json:"parts"`
}

type textPart struct {
	Text string `json:"text"`
}

// realtimeInputMessage carries one encoded capture chunk outbound.
type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []mediaChunk `json:"mediaChunks"`
}

type mediaChunk struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// serverMessage is the inbound frame envelope.
type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type serverContent struct {
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	ModelTurn           *modelTurn     `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
}

type transcription struct {
	Text string `json:"text"`
}

type modelTurn struct {
	Parts []modelPart `json:"parts"`
}

type modelPart struct {
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// Event is one demultiplexed session event. The concrete types below form
// the complete set a consumer has to handle.
type Event interface {
	liveEvent()
}

// OpenedEvent fires once when the remote service acknowledges setup.
type OpenedEvent struct{}

// InputTranscriptEvent carries a transcript delta of the user's speech.
type InputTranscriptEvent struct {
	Text string
}

// OutputTranscriptEvent carries a transcript delta of the model's speech.
type OutputTranscriptEvent struct {
	Text string
}

// TurnCompleteEvent marks the end of one exchange turn.
type TurnCompleteEvent struct{}

// AudioEvent carries one decoded chunk of synthesized audio.
type AudioEvent struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// InterruptedEvent signals barge-in: all pending playback must stop.
type InterruptedEvent struct{}

// ClosedEvent fires exactly once per session, on any terminal transition.
// Err is nil for a clean local or remote close.
type ClosedEvent struct {
	Err error
}

func (OpenedEvent) liveEvent()           {}
func (InputTranscriptEvent) liveEvent()  {}
func (OutputTranscriptEvent) liveEvent() {}
func (TurnCompleteEvent) liveEvent()     {}
func (AudioEvent) liveEvent()            {}
func (InterruptedEvent) liveEvent()      {}
func (ClosedEvent) liveEvent()           {}

// decodeServerFrame parses one inbound frame into its events, preserving the
// order transcript deltas, audio, interruption, and turn boundaries must be
// observed in. A malformed audio payload drops only that chunk; the error is
// returned alongside any events that did parse.
func decodeServerFrame(data []byte) ([]Event, error) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse server frame: %w", err)
	}

	var events []Event
	if msg.SetupComplete != nil {
		events = append(events, OpenedEvent{})
	}

	sc := msg.ServerContent
	if sc == nil {
		return events, nil
	}

	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		events = append(events, InputTranscriptEvent{Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		events = append(events, OutputTranscriptEvent{Text: sc.OutputTranscription.Text})
	}
	if sc.TurnComplete {
		events = append(events, TurnCompleteEvent{})
	}

	var chunkErr error
	if sc.ModelTurn != nil && len(sc.ModelTurn.Parts) > 0 {
		if inline := sc.ModelTurn.Parts[0].InlineData; inline != nil && inline.Data != "" {
			pcm, err := audio.DecodeBase64(inline.Data)
			if err != nil {
				chunkErr = fmt.Errorf("malformed audio chunk: %w", err)
			} else {
				events = append(events, AudioEvent{
					PCM:        pcm,
					SampleRate: sampleRateFromMIME(inline.MIMEType),
					Channels:   audio.Channels,
				})
			}
		}
	}

	if sc.Interrupted {
		events = append(events, InterruptedEvent{})
	}

	return events, chunkErr
}

// sampleRateFromMIME extracts the rate parameter from a mime type such as
// "audio/pcm;rate=24000", defaulting to the service's output rate.
func sampleRateFromMIME(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		param = strings.TrimSpace(param)
		if rest, ok := strings.CutPrefix(param, "rate="); ok {
			if rate, err := strconv.Atoi(rest); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return audio.OutputSampleRate
}
