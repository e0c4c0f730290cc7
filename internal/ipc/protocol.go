package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandShow        CommandType = "SHOW"
	CommandReload      CommandType = "RELOAD"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandActivate    CommandType = "ACTIVATE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool   `json:"daemon_running"`
	SessionPhase  string `json:"session_phase"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// WindowInfo describes one switchable window
type WindowInfo struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	Class     string `json:"class"`
	Minimized bool   `json:"minimized"`
}

// WindowsData represents the data returned by LIST_WINDOWS, in
// most-recently-used order
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// ActivatePayload represents the payload for the ACTIVATE command
type ActivatePayload struct {
	ID uint32 `json:"id"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
