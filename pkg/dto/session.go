package dto

import "github.com/google/uuid"

// StartSessionRequest names the playback target either by registered camera
// label or by raw endpoint. Exactly one is expected; camera_id wins.
type StartSessionRequest struct {
	CameraID string `json:"camera_id,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	Endpoint  string    `json:"endpoint"`
	State     string    `json:"state"`
	StartedAt string    `json:"started_at"`
	Error     string    `json:"error,omitempty"`
}
