package objectstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateKey(t *testing.T) {
	good := []string{"1693500000000-photo.jpg", "a_b-c.png"}
	for _, k := range good {
		if err := ValidateKey(k); err != nil {
			t.Errorf("ValidateKey(%q): %v", k, err)
		}
	}

	bad := []string{"", "dir/photo.jpg", "..", "a\\b.jpg", "../escape.jpg"}
	for _, k := range bad {
		if err := ValidateKey(k); err == nil {
			t.Errorf("expected ValidateKey(%q) to fail", k)
		}
	}
}

func TestFSPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir, "/images")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()

	url, err := s.Put(ctx, "photo.jpg", []byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/images/photo.jpg" {
		t.Errorf("expected /images/photo.jpg, got %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("stored bytes mismatch: %q", data)
	}

	if err := s.Delete(ctx, "photo.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photo.jpg")); !os.IsNotExist(err) {
		t.Error("expected file removed after delete")
	}
}

func TestFSRejectsTraversalKeys(t *testing.T) {
	s, err := NewFS(t.TempDir(), "/images")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if _, err := s.Put(context.Background(), "../escape.jpg", []byte("x"), "image/jpeg"); err == nil {
		t.Error("expected error for traversal key")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	url, err := s.Put(ctx, "photo.jpg", []byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url == "" {
		t.Error("expected non-empty URL")
	}

	data, ok := s.Get("photo.jpg")
	if !ok || string(data) != "jpeg bytes" {
		t.Errorf("expected stored bytes back, got %q (ok=%v)", data, ok)
	}

	if err := s.Delete(ctx, "photo.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store after delete, got %d", s.Len())
	}
}

func TestMemoryPutErr(t *testing.T) {
	s := NewMemory()
	s.PutErr = errors.New("bucket unavailable")

	if _, err := s.Put(context.Background(), "photo.jpg", []byte("x"), "image/jpeg"); err == nil {
		t.Error("expected injected Put failure")
	}
	if s.Len() != 0 {
		t.Errorf("expected nothing stored, got %d", s.Len())
	}
}
