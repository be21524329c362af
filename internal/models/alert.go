package models

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityFire  Severity = "fire"
	SeveritySmoke Severity = "smoke"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityFire || s == SeveritySmoke
}

// Alert is one detection event. The CameraID is a soft reference to a
// registered camera's external label; it may dangle if the camera was
// removed. Alerts are never mutated after construction.
type Alert struct {
	ID          uuid.UUID `json:"id"`
	CameraID    string    `json:"camera_id"`
	Timestamp   time.Time `json:"timestamp"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	SnapshotKey string    `json:"snapshot_key,omitempty"`
}

// AlertMessage is the payload the detection source publishes to NATS.
// Snapshot carries optional raw JPEG bytes that the intake pipeline
// offloads to object storage before ingestion.
type AlertMessage struct {
	CameraID    string    `json:"camera_id"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Snapshot    []byte    `json:"snapshot,omitempty"`
}
