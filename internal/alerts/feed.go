package alerts

import (
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/observability"
)

// Feed owns the in-memory collection of detection alerts. It is append-only
// from the feed's point of view: records are immutable and are never edited
// in place. No deduplication is performed; the detection source is trusted
// to emit one message per event.
//
// Alerts referencing a camera that was later removed are retained. The feed
// is an event log and the camera reference is a soft correlation key, not an
// ownership relation.
type Feed struct {
	mu     sync.RWMutex
	alerts []models.Alert
}

func NewFeed() *Feed {
	return &Feed{}
}

// Ingest appends one alert.
func (f *Feed) Ingest(a models.Alert) {
	f.mu.Lock()
	f.alerts = append(f.alerts, a)
	f.mu.Unlock()

	observability.AlertsIngested.WithLabelValues(string(a.Severity)).Inc()
}

// List returns all alerts in ingestion order. Callers that need
// chronological order must sort by Timestamp themselves; ingestion order is
// arrival order, not event order.
func (f *Feed) List() []models.Alert {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

// ForCamera returns the alerts whose camera label equals cameraID, in
// ingestion order. An unknown camera yields an empty slice.
func (f *Feed) ForCamera(cameraID string) []models.Alert {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Alert, 0)
	for _, a := range f.alerts {
		if a.CameraID == cameraID {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the alert with the given id.
func (f *Feed) Find(id uuid.UUID) (models.Alert, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, a := range f.alerts {
		if a.ID == id {
			return a, true
		}
	}
	return models.Alert{}, false
}

// Len returns the number of ingested alerts.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.alerts)
}
