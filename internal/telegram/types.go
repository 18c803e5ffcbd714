// Package telegram provides the Bot API client used to deliver panel reports
// and the long-poll listener that reacts to status commands.
package telegram

import (
	"fmt"
)

// APIError represents a non-2xx response or an ok=false envelope from the
// Bot API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: %s (status: %d, code: %d, endpoint: %s)", e.Message, e.StatusCode, e.Code, e.Endpoint)
}

// HTTPStatus returns the HTTP status code carried by the error.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is the slice of the Bot API message object the listener needs.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Update is one entry from getUpdates. An edit carries the message under
// edited_message instead of message.
type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message"`
	EditedMessage *Message `json:"edited_message"`
}

// updatesResponse is the getUpdates envelope.
type updatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	ErrorCode   int      `json:"error_code"`
	Description string   `json:"description"`
}

// sendResponse is the sendMessage envelope.
type sendResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}
