package models

import (
	"time"

	"github.com/google/uuid"
)

// Camera is a registered camera endpoint. Records are immutable once they
// leave the registry's validated-creation path.
type Camera struct {
	ID             uuid.UUID `json:"id"`
	CameraID       string    `json:"camera_id"`
	StreamEndpoint string    `json:"stream_endpoint"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	IsOnline       bool      `json:"is_online"`
}

// CameraCandidate carries the unvalidated fields of a camera registration.
type CameraCandidate struct {
	CameraID       string `json:"camera_id"`
	StreamEndpoint string `json:"stream_endpoint"`
	Location       string `json:"location"`
}
