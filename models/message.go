package models

import "time"

type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// MessageKind distinguishes prompts from the other bot messages so a step-back
// can find where a step started.
type MessageKind string

const (
	KindPrompt MessageKind = "prompt"
	KindInfo   MessageKind = "info"
	KindError  MessageKind = "error"
	KindReply  MessageKind = "reply"
)

// Message is one transcript entry.
type Message struct {
	Text   string      `json:"text"`
	Sender Sender      `json:"sender"`
	Step   Step        `json:"step"`
	Kind   MessageKind `json:"kind"`
	At     time.Time   `json:"at"`
}
