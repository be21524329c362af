package dto

import "github.com/google/uuid"

type AlertResponse struct {
	ID          uuid.UUID `json:"id"`
	CameraID    string    `json:"camera_id"`
	Timestamp   string    `json:"timestamp"`
	Severity    string    `json:"severity"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Total  int             `json:"total"`
}

// WSAlert is a WebSocket message for real-time alert delivery.
type WSAlert struct {
	Type     string        `json:"type"` // alert
	CameraID string        `json:"camera_id"`
	Data     AlertResponse `json:"data"`
}
