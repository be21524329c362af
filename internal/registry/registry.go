package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/observability"
	"github.com/your-org/firewatch/internal/storage"
)

var (
	// ErrMissingField is returned when a required candidate field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidEndpoint is returned when the stream endpoint is not an rtsp:// URI.
	ErrInvalidEndpoint = errors.New("stream endpoint must start with rtsp://")
	// ErrDuplicateCamera is returned when the camera label is already registered.
	ErrDuplicateCamera = errors.New("camera id already registered")
	// ErrMalformed is returned when a persisted payload cannot be decoded.
	ErrMalformed = errors.New("malformed stored payload")
)

const payloadVersion = 1

// savedCameras is the versioned envelope persisted under the savedCameras key.
type savedCameras struct {
	Version int             `json:"version"`
	Cameras []models.Camera `json:"cameras"`
}

// Registry owns the durable set of registered cameras. It is the single
// source of truth for camera data; every mutation is written through to the
// backing store under one key, serialized by the registry's lock.
type Registry struct {
	kv storage.KV

	mu      sync.RWMutex
	cameras []models.Camera
}

// New builds a registry and restores the persisted collection. A missing or
// malformed payload is recoverable: the registry starts empty and logs a
// warning instead of failing.
func New(ctx context.Context, kv storage.KV) *Registry {
	r := &Registry{kv: kv}

	data, err := kv.Get(ctx, storage.KeySavedCameras)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// First run, nothing persisted yet.
	case err != nil:
		slog.Warn("restore cameras: store unavailable, starting empty", "error", err)
	default:
		cameras, derr := decodeCameras(data)
		if derr != nil {
			slog.Warn("restore cameras: discarding stored payload", "error", derr)
		} else {
			r.cameras = cameras
		}
	}

	observability.CamerasRegistered.Set(float64(len(r.cameras)))
	return r
}

func decodeCameras(data []byte) ([]models.Camera, error) {
	var payload savedCameras
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Version != payloadVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrMalformed, payload.Version)
	}
	return payload.Cameras, nil
}

// List returns the registered cameras in insertion order.
func (r *Registry) List() []models.Camera {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Camera, len(r.cameras))
	copy(out, r.cameras)
	return out
}

// Find returns the first camera with the given external label.
func (r *Registry) Find(cameraID string) (models.Camera, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cameras {
		if c.CameraID == cameraID {
			return c, true
		}
	}
	return models.Camera{}, false
}

// Get returns the camera with the given internal id.
func (r *Registry) Get(id uuid.UUID) (models.Camera, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cameras {
		if c.ID == id {
			return c, true
		}
	}
	return models.Camera{}, false
}

// Add validates the candidate, appends the new record and writes the
// collection through to the backing store. A persist failure fails the
// mutation: the in-memory append is rolled back so callers never see a
// success that was not durable.
func (r *Registry) Add(ctx context.Context, cand models.CameraCandidate) (models.Camera, error) {
	if err := validate(cand); err != nil {
		return models.Camera{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cameras {
		if c.CameraID == cand.CameraID {
			return models.Camera{}, fmt.Errorf("%w: %s", ErrDuplicateCamera, cand.CameraID)
		}
	}

	cam := models.Camera{
		ID:             uuid.New(),
		CameraID:       cand.CameraID,
		StreamEndpoint: cand.StreamEndpoint,
		Location:       cand.Location,
		CreatedAt:      time.Now().UTC(),
		IsOnline:       true,
	}

	r.cameras = append(r.cameras, cam)
	if err := r.persist(ctx); err != nil {
		r.cameras = r.cameras[:len(r.cameras)-1]
		return models.Camera{}, fmt.Errorf("persist cameras: %w", err)
	}

	observability.CamerasRegistered.Set(float64(len(r.cameras)))
	slog.Info("camera registered", "camera_id", cam.CameraID, "location", cam.Location)
	return cam, nil
}

// Remove deletes the camera with the given internal id. Removing an id that
// is not present is a no-op, not an error.
func (r *Registry) Remove(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.cameras {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	removed := r.cameras[idx]
	r.cameras = append(r.cameras[:idx], r.cameras[idx+1:]...)
	if err := r.persist(ctx); err != nil {
		r.cameras = append(r.cameras[:idx], append([]models.Camera{removed}, r.cameras[idx:]...)...)
		return fmt.Errorf("persist cameras: %w", err)
	}

	observability.CamerasRegistered.Set(float64(len(r.cameras)))
	slog.Info("camera removed", "camera_id", removed.CameraID)
	return nil
}

// persist writes the full collection. Callers hold r.mu.
func (r *Registry) persist(ctx context.Context) error {
	data, err := json.Marshal(savedCameras{Version: payloadVersion, Cameras: r.cameras})
	if err != nil {
		return fmt.Errorf("marshal cameras: %w", err)
	}
	return r.kv.Put(ctx, storage.KeySavedCameras, data)
}

func validate(cand models.CameraCandidate) error {
	switch {
	case strings.TrimSpace(cand.CameraID) == "":
		return fmt.Errorf("%w: camera_id", ErrMissingField)
	case strings.TrimSpace(cand.StreamEndpoint) == "":
		return fmt.Errorf("%w: stream_endpoint", ErrMissingField)
	case strings.TrimSpace(cand.Location) == "":
		return fmt.Errorf("%w: location", ErrMissingField)
	}
	if !strings.HasPrefix(strings.ToLower(cand.StreamEndpoint), "rtsp://") {
		return fmt.Errorf("%w: got %q", ErrInvalidEndpoint, cand.StreamEndpoint)
	}
	return nil
}
