package errors

import (
	"sync"
	"time"
)

// maxTUIMessages bounds the history kept for the status line.
const maxTUIMessages = 50

// MessageType is the severity of a TUI message.
type MessageType int

const (
	MessageTypeError MessageType = iota
	MessageTypeWarning
	MessageTypeInfo
	MessageTypeSuccess
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeError:
		return "error"
	case MessageTypeWarning:
		return "warning"
	case MessageTypeSuccess:
		return "success"
	default:
		return "info"
	}
}

// Message is one entry shown in the TUI status line.
type Message struct {
	Text      string
	Type      MessageType
	Timestamp time.Time
}

// TUIHandler stores messages for display in the TUI instead of printing,
// which would corrupt the alternate screen.
type TUIHandler struct {
	mu       sync.RWMutex
	messages []Message
	onError  func(msg Message)
	now      func() time.Time
}

// NewTUIHandler returns a handler calling onMessage, if set, for every message.
func NewTUIHandler(onMessage func(msg Message)) *TUIHandler {
	return &TUIHandler{onError: onMessage, now: time.Now}
}

func (h *TUIHandler) Error(msg string)   { h.add(msg, MessageTypeError) }
func (h *TUIHandler) Warning(msg string) { h.add(msg, MessageTypeWarning) }
func (h *TUIHandler) Info(msg string)    { h.add(msg, MessageTypeInfo) }
func (h *TUIHandler) Success(msg string) { h.add(msg, MessageTypeSuccess) }

func (h *TUIHandler) add(msg string, msgType MessageType) {
	h.mu.Lock()
	message := Message{Text: msg, Type: msgType, Timestamp: h.now()}
	h.messages = append(h.messages, message)
	if over := len(h.messages) - maxTUIMessages; over > 0 {
		h.messages = append([]Message(nil), h.messages[over:]...)
	}
	cb := h.onError
	h.mu.Unlock()

	if cb != nil {
		cb(message)
	}
}

// GetLatest returns the most recent message.
func (h *TUIHandler) GetLatest() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// LatestWithin returns the most recent message if it is younger than ttl.
func (h *TUIHandler) LatestWithin(ttl time.Duration) (Message, bool) {
	msg, ok := h.GetLatest()
	if !ok || h.now().Sub(msg.Timestamp) > ttl {
		return Message{}, false
	}
	return msg, true
}

// Clear drops every stored message.
func (h *TUIHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// GetAll returns a copy of the stored messages, oldest first.
func (h *TUIHandler) GetAll() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	copied := make([]Message, len(h.messages))
	copy(copied, h.messages)
	return copied
}
