package transcript

import (
	"time"

	"vtcland/models"
)

// Transcript is the ordered list of messages of one session. It grows by
// Append during forward progress and shrinks only on RewindTo or Reset.
type Transcript struct {
	messages []models.Message
	now      func() time.Time
}

func New(now func() time.Time) *Transcript {
	if now == nil {
		now = time.Now
	}
	return &Transcript{now: now}
}

// Append adds a message and returns it with its timestamp set.
func (t *Transcript) Append(sender models.Sender, step models.Step, kind models.MessageKind, text string) models.Message {
	m := models.Message{Text: text, Sender: sender, Step: step, Kind: kind, At: t.now()}
	t.messages = append(t.messages, m)
	return m
}

// Messages returns a copy of the whole transcript.
func (t *Transcript) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int { return len(t.messages) }

// Since returns a copy of the messages appended after the first n.
func (t *Transcript) Since(n int) []models.Message {
	if n < 0 {
		n = 0
	}
	if n >= len(t.messages) {
		return nil
	}
	out := make([]models.Message, len(t.messages)-n)
	copy(out, t.messages[n:])
	return out
}

// RewindTo truncates the transcript right after the last prompt of step and
// reports whether such a prompt was found. Nothing is removed otherwise.
func (t *Transcript) RewindTo(step models.Step) bool {
	for i := len(t.messages) - 1; i >= 0; i-- {
		m := t.messages[i]
		if m.Sender == models.SenderBot && m.Kind == models.KindPrompt && m.Step == step {
			t.messages = t.messages[:i+1]
			return true
		}
	}
	return false
}

// Reset empties the transcript.
func (t *Transcript) Reset() {
	t.messages = nil
}
