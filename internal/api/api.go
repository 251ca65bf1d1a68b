// Package api holds the JSON bodies exchanged between the daemon and its clients.
package api

import (
	"time"

	"github.com/devbydaniel/voicerec/internal/catalog"
)

const Prefix = "/api/v1"

// ValueResponse answers start, pause and resume. Reason explains a false Value.
type ValueResponse struct {
	Value  bool   `json:"value"`
	Reason string `json:"reason,omitempty"`
}

type StartResponse struct {
	Value     bool   `json:"value"`
	SessionID string `json:"sessionId"`
	Path      string `json:"path"`
	Config    string `json:"config"`
}

type StopResponse struct {
	SessionID     string `json:"sessionId"`
	Path          string `json:"path"`
	MsDuration    int64  `json:"msDuration"`
	MimeType      string `json:"mimeType"`
	Segments      int    `json:"segments"`
	Interruptions int    `json:"interruptions"`
}

type StatusResponse struct {
	Status        string     `json:"status"`
	SessionID     string     `json:"sessionId,omitempty"`
	Path          string     `json:"path,omitempty"`
	Segments      int        `json:"segments"`
	Interruptions int        `json:"interruptions"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
}

type InterruptionRequest struct {
	Type string `json:"type" binding:"required,oneof=began ended"`
}

type InterruptionResponse struct {
	Type string `json:"type"`
}

type RecordingsResponse struct {
	Recordings []catalog.Recording `json:"recordings"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
