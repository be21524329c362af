package dto

import "github.com/google/uuid"

// CreateCameraRequest carries unvalidated camera fields. Validation happens
// in the registry so its error taxonomy reaches the client unchanged.
type CreateCameraRequest struct {
	CameraID       string `json:"camera_id"`
	StreamEndpoint string `json:"stream_endpoint"`
	Location       string `json:"location"`
}

type CameraResponse struct {
	ID             uuid.UUID `json:"id"`
	CameraID       string    `json:"camera_id"`
	StreamEndpoint string    `json:"stream_endpoint"`
	Location       string    `json:"location"`
	CreatedAt      string    `json:"created_at"`
	IsOnline       bool      `json:"is_online"`
}

type CameraListResponse struct {
	Cameras []CameraResponse `json:"cameras"`
	Total   int              `json:"total"`
}
