package websocket

import (
	"time"

	"kelasku/server/internal/models"
)

// FrameType discriminates outbound live-channel frames.
type FrameType string

const (
	FrameMessage FrameType = "message"
	FrameSystem  FrameType = "system"
)

// SystemEventKind is the typed classification of an ephemeral system notice,
// so consumers filter on kind instead of parsing human-readable text.
type SystemEventKind string

const (
	SystemJoin  SystemEventKind = "JOIN"
	SystemLeave SystemEventKind = "LEAVE"
	SystemOther SystemEventKind = "OTHER"
)

// SystemEvent is an ephemeral participant notice. It is never persisted.
type SystemEvent struct {
	Kind SystemEventKind `json:"kind"`
	Text string          `json:"text"`
	At   time.Time       `json:"at"`
}

// Frame is an outbound live-channel frame: either a persisted message or a
// system event. ClientID echoes the sender's draft clientId so the sending
// client can reconcile its optimistic copy.
type Frame struct {
	Type     FrameType       `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Message  *models.Message `json:"message,omitempty"`
	System   *SystemEvent    `json:"system,omitempty"`
}

// Inbound frames mirror the send-endpoint draft shape: clients write a
// models.Draft JSON object directly.
