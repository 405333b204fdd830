package messaging

// ClientMessage is what a websocket client sends.
type ClientMessage struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

// ServerMessage is what the hub writes to a websocket client.
type ServerMessage struct {
	Type           string   `json:"type"`
	ConversationID int64    `json:"conversation_id,omitempty"`
	Message        *Message `json:"message,omitempty"`
	UserID         int64    `json:"user_id,omitempty"`
	ErrorCode      string   `json:"code,omitempty"`
	ErrorMessage   string   `json:"error,omitempty"`
}

func eventMessage(e Event) *ServerMessage {
	return &ServerMessage{
		Type:           e.Type,
		ConversationID: e.ConversationID,
		Message:        e.Message,
		UserID:         e.UserID,
	}
}

func pongMessage() *ServerMessage {
	return &ServerMessage{Type: "pong"}
}

func errorMessage(code, message string) *ServerMessage {
	return &ServerMessage{Type: "error", ErrorCode: code, ErrorMessage: message}
}
