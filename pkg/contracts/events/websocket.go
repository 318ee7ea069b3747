// Package events contains the message contracts of the live filter WebSocket
// channel.
package events

import (
	"time"

	api "pulseboard/pkg/contracts/api/v1"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeFilterRequest MessageType = "filter:request"

	// Server to client
	MessageTypeDashboardUpdate MessageType = "dashboard:update"
	MessageTypeConnect         MessageType = "connect"
	MessageTypeError           MessageType = "error"
)

// Skills views reachable over the live channel.
const (
	SkillsViewOverview    = "overview"
	SkillsViewOccupations = "occupations"
	SkillsViewCountries   = "countries"
	SkillsViewONET        = "onet"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// SkillsQuery selects one skills view and its single control.
type SkillsQuery struct {
	View   string `json:"view" validate:"required,oneof=overview occupations countries onet"`
	SortBy string `json:"sort_by,omitempty" validate:"omitempty,oneof=TOT_EMP A_MEDIAN"`
	TopN   int    `json:"top_n,omitempty" validate:"gte=0"`
}

// FilterRequest is a control change sent by the presenter. Exactly one of
// Healthcare or Skills is read, chosen by Dashboard.
type FilterRequest struct {
	ID         string                          `json:"id,omitempty"`
	Type       MessageType                     `json:"type"`
	Dashboard  string                          `json:"dashboard" validate:"required,oneof=healthcare skills"`
	Healthcare *api.HealthcareDashboardRequest `json:"healthcare,omitempty"`
	Skills     *SkillsQuery                    `json:"skills,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Dashboard string      `json:"dashboard,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Fatal   bool        `json:"fatal"`
}

// NewMessage stamps a message with the current time.
func NewMessage(msgType MessageType, id, sessionID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			SessionID: sessionID,
		},
		Data: data,
	}
}
