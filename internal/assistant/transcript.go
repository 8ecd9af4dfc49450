// ABOUTME: Transcript accumulation for the live voice session
// ABOUTME: Concatenates deltas per speaker and flushes on turn boundaries
package assistant

import "strings"

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// Entry is one completed line of conversation.
type Entry struct {
	Speaker Speaker
	Text    string
}

// Accumulator collects transcript deltas until a turn completes. The
// completed list is append-only.
type Accumulator struct {
	entries []Entry
	user    strings.Builder
	model   strings.Builder
}

// AddUser appends a delta of the user's speech transcript.
func (a *Accumulator) AddUser(delta string) {
	a.user.WriteString(delta)
}

// AddModel appends a delta of the model's speech transcript.
func (a *Accumulator) AddModel(delta string) {
	a.model.WriteString(delta)
}

// FlushTurn converts accumulated deltas into completed entries, user first,
// and empties the accumulator. Speakers with no accumulated text produce no
// entry.
func (a *Accumulator) FlushTurn() {
	if text := a.user.String(); text != "" {
		a.entries = append(a.entries, Entry{Speaker: SpeakerUser, Text: text})
	}
	if text := a.model.String(); text != "" {
		a.entries = append(a.entries, Entry{Speaker: SpeakerModel, Text: text})
	}
	a.user.Reset()
	a.model.Reset()
}

// Entries returns a copy of the completed entries.
func (a *Accumulator) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// PendingUser returns the not-yet-flushed user transcript.
func (a *Accumulator) PendingUser() string {
	return a.user.String()
}

// PendingModel returns the not-yet-flushed model transcript.
func (a *Accumulator) PendingModel() string {
	return a.model.String()
}
