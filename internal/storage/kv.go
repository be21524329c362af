package storage

import (
	"context"
	"errors"
)

// Well-known keys in the backing store.
const (
	KeySavedCameras = "savedCameras"
	KeyCurrentUser  = "currentUser"
)

var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("key not found")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// KV is the backing key-value store shared by the camera registry and the
// user session. Owners serialize their own writes; implementations only
// need per-call atomicity.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
