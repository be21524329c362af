package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/firewatch/internal/models"
)

var (
	// ErrMissingCamera is returned for messages without a camera label.
	ErrMissingCamera = errors.New("alert message missing camera_id")
	// ErrUnknownSeverity is returned for severities outside {fire, smoke}.
	ErrUnknownSeverity = errors.New("unknown alert severity")
)

// SnapshotStore stores alert snapshot images. Satisfied by storage.MinIOStore.
type SnapshotStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Intake turns detection-source messages into immutable alert records:
// validate, offload the snapshot to object storage, ingest, notify.
type Intake struct {
	feed      *Feed
	snapshots SnapshotStore
	notify    func(models.Alert)
}

// NewIntake builds an intake pipeline. snapshots and notify may be nil when
// snapshot storage or live push is not wired.
func NewIntake(feed *Feed, snapshots SnapshotStore, notify func(models.Alert)) *Intake {
	return &Intake{feed: feed, snapshots: snapshots, notify: notify}
}

// Handle processes one message from the detection source. A message with no
// timestamp is stamped at construction time. Snapshot upload failures are
// not fatal: the alert is ingested without an image.
func (i *Intake) Handle(ctx context.Context, msg models.AlertMessage) (models.Alert, error) {
	if msg.CameraID == "" {
		return models.Alert{}, ErrMissingCamera
	}
	if !msg.Severity.Valid() {
		return models.Alert{}, fmt.Errorf("%w: %q", ErrUnknownSeverity, msg.Severity)
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	a := models.Alert{
		ID:          uuid.New(),
		CameraID:    msg.CameraID,
		Timestamp:   ts,
		Severity:    msg.Severity,
		Location:    msg.Location,
		Description: msg.Description,
	}

	if len(msg.Snapshot) > 0 && i.snapshots != nil {
		key := fmt.Sprintf("alerts/%s/%s.jpg", a.CameraID, a.ID)
		if err := i.snapshots.PutObject(ctx, key, msg.Snapshot, "image/jpeg"); err != nil {
			slog.Warn("store alert snapshot", "camera_id", a.CameraID, "error", err)
		} else {
			a.SnapshotKey = key
			a.ImageURL = "/v1/alerts/" + a.ID.String() + "/snapshot"
		}
	}

	i.feed.Ingest(a)
	if i.notify != nil {
		i.notify(a)
	}

	slog.Debug("alert ingested", "camera_id", a.CameraID, "severity", a.Severity)
	return a, nil
}
