package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryKVRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := kv.Put(ctx, KeySavedCameras, []byte("payload")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	got, err := kv.Get(ctx, KeySavedCameras)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Get() = %q, want %q", got, "payload")
	}

	if err := kv.Delete(ctx, KeySavedCameras); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := kv.Get(ctx, KeySavedCameras); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryKVReturnsCopies(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	original := []byte("abc")
	if err := kv.Put(ctx, "k", original); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	original[0] = 'x'

	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}

	got[0] = 'y'
	again, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored buffer: %q", again)
	}
}

func TestMemoryKVFailWrites(t *testing.T) {
	kv := NewMemoryKV()
	kv.FailWrites = true
	ctx := context.Background()

	if err := kv.Put(ctx, "k", []byte("v")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Put() error = %v, want ErrUnavailable", err)
	}
	if err := kv.Delete(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Delete() error = %v, want ErrUnavailable", err)
	}
}
