package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/storage"
)

func newTestRegistry(t *testing.T) (*Registry, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	return New(context.Background(), kv), kv
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name    string
		cand    models.CameraCandidate
		wantErr error
	}{
		{
			name: "Valid",
			cand: models.CameraCandidate{
				CameraID:       "CAM010",
				StreamEndpoint: "rtsp://10.0.0.5/s1",
				Location:       "Lobby",
			},
		},
		{
			name: "Uppercase Scheme",
			cand: models.CameraCandidate{
				CameraID:       "CAM012",
				StreamEndpoint: "RTSP://10.0.0.5/s2",
				Location:       "Lobby",
			},
		},
		{
			name: "HTTP Endpoint",
			cand: models.CameraCandidate{
				CameraID:       "CAM011",
				StreamEndpoint: "http://bad",
				Location:       "X",
			},
			wantErr: ErrInvalidEndpoint,
		},
		{
			name: "Empty Camera ID",
			cand: models.CameraCandidate{
				StreamEndpoint: "rtsp://10.0.0.5/s1",
				Location:       "Lobby",
			},
			wantErr: ErrMissingField,
		},
		{
			name: "Empty Endpoint",
			cand: models.CameraCandidate{
				CameraID: "CAM013",
				Location: "Lobby",
			},
			wantErr: ErrMissingField,
		},
		{
			name: "Empty Location",
			cand: models.CameraCandidate{
				CameraID:       "CAM014",
				StreamEndpoint: "rtsp://10.0.0.5/s1",
			},
			wantErr: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t)
			before := len(r.List())

			cam, err := r.Add(context.Background(), tt.cand)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Add() error = %v, want %v", err, tt.wantErr)
				}
				if got := len(r.List()); got != before {
					t.Errorf("collection changed on failed add: %d -> %d", before, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("Add() unexpected error: %v", err)
			}
			if cam.CameraID != tt.cand.CameraID {
				t.Errorf("CameraID = %q, want %q", cam.CameraID, tt.cand.CameraID)
			}
			if !cam.IsOnline {
				t.Error("new camera should default to online")
			}
			if cam.CreatedAt.IsZero() {
				t.Error("CreatedAt not stamped")
			}
			if got := len(r.List()); got != before+1 {
				t.Errorf("List() length = %d, want %d", got, before+1)
			}
		})
	}
}

func TestAddRejectsDuplicateLabel(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cand := models.CameraCandidate{
		CameraID:       "CAM001",
		StreamEndpoint: "rtsp://192.168.1.100:554/stream1",
		Location:       "Building A",
	}
	if _, err := r.Add(ctx, cand); err != nil {
		t.Fatalf("first Add() error: %v", err)
	}

	cand.Location = "Building B"
	if _, err := r.Add(ctx, cand); !errors.Is(err, ErrDuplicateCamera) {
		t.Fatalf("second Add() error = %v, want ErrDuplicateCamera", err)
	}
	if got := len(r.List()); got != 1 {
		t.Errorf("List() length = %d, want 1", got)
	}
}

func TestAddScenario(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cam, err := r.Add(ctx, models.CameraCandidate{
		CameraID:       "CAM010",
		StreamEndpoint: "rtsp://10.0.0.5/s1",
		Location:       "Lobby",
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if !cam.IsOnline {
		t.Error("IsOnline = false, want true")
	}

	_, err = r.Add(ctx, models.CameraCandidate{
		CameraID:       "CAM011",
		StreamEndpoint: "http://bad",
		Location:       "X",
	})
	if !errors.Is(err, ErrInvalidEndpoint) {
		t.Fatalf("Add() error = %v, want ErrInvalidEndpoint", err)
	}
	if got := len(r.List()); got != 1 {
		t.Errorf("List() length = %d, want 1", got)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cam, err := r.Add(ctx, models.CameraCandidate{
		CameraID:       "CAM001",
		StreamEndpoint: "rtsp://10.0.0.1/s1",
		Location:       "Hall",
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := r.Remove(ctx, cam.ID); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if got := len(r.List()); got != 0 {
		t.Fatalf("List() length = %d, want 0", got)
	}

	// Removing an absent id is a no-op, not an error.
	if err := r.Remove(ctx, cam.ID); err != nil {
		t.Fatalf("second Remove() error: %v", err)
	}
	if got := len(r.List()); got != 0 {
		t.Errorf("List() length = %d, want 0", got)
	}
}

func TestRoundTripThroughStore(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	r1 := New(ctx, kv)
	want := []models.CameraCandidate{
		{CameraID: "CAM001", StreamEndpoint: "rtsp://10.0.0.1/s1", Location: "Hall"},
		{CameraID: "CAM002", StreamEndpoint: "rtsp://10.0.0.2/s1", Location: "Lab"},
		{CameraID: "CAM003", StreamEndpoint: "rtsp://10.0.0.3/s1", Location: "Lobby"},
	}
	for _, cand := range want {
		if _, err := r1.Add(ctx, cand); err != nil {
			t.Fatalf("Add(%s) error: %v", cand.CameraID, err)
		}
	}

	// A fresh registry over the same store restores an equal collection.
	r2 := New(ctx, kv)
	got := r2.List()
	if len(got) != len(want) {
		t.Fatalf("restored %d cameras, want %d", len(got), len(want))
	}
	orig := r1.List()
	for i := range got {
		if got[i] != orig[i] {
			t.Errorf("camera %d = %+v, want %+v", i, got[i], orig[i])
		}
	}
}

func TestRestoreRecoversFromBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"Garbage", []byte("not json at all")},
		{"Wrong Version", []byte(`{"version":99,"cameras":[]}`)},
		{"Wrong Shape", []byte(`[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryKV()
			ctx := context.Background()
			if err := kv.Put(ctx, storage.KeySavedCameras, tt.payload); err != nil {
				t.Fatalf("seed store: %v", err)
			}

			r := New(ctx, kv)
			if got := len(r.List()); got != 0 {
				t.Errorf("List() length = %d, want 0 after corrupt restore", got)
			}

			// The registry must stay usable after recovery.
			if _, err := r.Add(ctx, models.CameraCandidate{
				CameraID:       "CAM001",
				StreamEndpoint: "rtsp://10.0.0.1/s1",
				Location:       "Hall",
			}); err != nil {
				t.Errorf("Add() after recovery error: %v", err)
			}
		})
	}
}

func TestAddRollsBackWhenPersistFails(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	r := New(ctx, kv)

	kv.FailWrites = true
	_, err := r.Add(ctx, models.CameraCandidate{
		CameraID:       "CAM001",
		StreamEndpoint: "rtsp://10.0.0.1/s1",
		Location:       "Hall",
	})
	if err == nil {
		t.Fatal("Add() succeeded despite persist failure")
	}
	if got := len(r.List()); got != 0 {
		t.Errorf("List() length = %d, want 0 after rollback", got)
	}

	// In-memory data stays usable once the store recovers.
	kv.FailWrites = false
	if _, err := r.Add(ctx, models.CameraCandidate{
		CameraID:       "CAM001",
		StreamEndpoint: "rtsp://10.0.0.1/s1",
		Location:       "Hall",
	}); err != nil {
		t.Errorf("Add() after store recovery error: %v", err)
	}
}

func TestFind(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, models.CameraCandidate{
		CameraID:       "CAM001",
		StreamEndpoint: "rtsp://10.0.0.1/s1",
		Location:       "Hall",
	}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if cam, ok := r.Find("CAM001"); !ok || cam.CameraID != "CAM001" {
		t.Errorf("Find(CAM001) = %+v, %v", cam, ok)
	}
	if _, ok := r.Find("CAM999"); ok {
		t.Error("Find(CAM999) found a camera that was never added")
	}
}
