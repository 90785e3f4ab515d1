package chat

import (
	"fmt"
	"strings"
)

type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeBot    MessageType = "bot"
	MessageTypeSystem MessageType = "system"
	MessageTypeError  MessageType = "error"
)

// Message is a single transcript entry. It is plain data: two messages are
// equal when their type and text are equal.
type Message struct {
	Type MessageType `json:"type" yaml:"type"`
	Text string      `json:"text" yaml:"text"`
}

func NewUserMessage(text string) Message {
	return Message{Type: MessageTypeUser, Text: text}
}

func NewBotMessage(text string) Message {
	return Message{Type: MessageTypeBot, Text: text}
}

func NewSystemMessage(text string) Message {
	return Message{Type: MessageTypeSystem, Text: text}
}

func NewErrorMessage(text string) Message {
	return Message{Type: MessageTypeError, Text: text}
}

func (m Message) String() string {
	return fmt.Sprintf("[%s]: %s", m.Type, strings.TrimRight(m.Text, "\n"))
}

// Transcript is an ordered sequence of messages, earliest context first.
type Transcript []Message

// Clone returns a copy that shares no backing array with t.
func (t Transcript) Clone() Transcript {
	ret := make(Transcript, len(t))
	copy(ret, t)
	return ret
}

// Last returns the trailing message, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

// Failed reports whether the transcript ends in an error message.
func (t Transcript) Failed() bool {
	last, ok := t.Last()
	return ok && last.Type == MessageTypeError
}

func (t Transcript) String() string {
	var b strings.Builder
	for _, m := range t {
		b.WriteString(m.String())
		b.WriteString("\n")
	}
	return b.String()
}
