package session

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

type Message struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Sender    Sender         `json:"sender"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewMessage(content string, sender Sender, metadata map[string]any, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: now,
		Metadata:  metadata,
	}
}

func (m Message) Clone() Message {
	if m.Metadata == nil {
		return m
	}
	md := make(map[string]any, len(m.Metadata))
	for k, v := range m.Metadata {
		md[k] = v
	}
	m.Metadata = md
	return m
}
