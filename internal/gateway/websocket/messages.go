package websocket

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Telemetry messages
	MessageTypeDeviceView MessageType = "device_view"

	// Session messages
	MessageTypeSessionState MessageType = "session_state"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewDeviceViewMessage wraps a view model snapshot for the live stream.
func NewDeviceViewMessage(view interface{}) Message {
	return NewMessage(MessageTypeDeviceView, view)
}

// NewSessionStateMessage wraps a session snapshot for the live stream.
func NewSessionStateMessage(snapshot interface{}) Message {
	return NewMessage(MessageTypeSessionState, snapshot)
}
