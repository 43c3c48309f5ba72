package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

type storageFake struct {
	files     map[string]string
	saveErr   error
	deleteErr map[string]error
}

func newStorageFake() *storageFake {
	return &storageFake{files: map[string]string{}, deleteErr: map[string]error{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.files[key] = string(raw)
	return int64(len(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	delete(f.files, key)
	return nil
}

func (f *storageFake) List(context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.files))
	for key := range f.files {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *storageFake) Locate(key string) string { return "/uploads/" + key }

type notifierFake struct {
	published []domain.UploadedFile
	err       error
}

func (f *notifierFake) PublishUploaded(_ context.Context, file domain.UploadedFile) error {
	f.published = append(f.published, file)
	return f.err
}

func TestUploadRegistryStoreKeepsSuppliedName(t *testing.T) {
	storage := newStorageFake()
	notifier := &notifierFake{}
	registry := NewUploadRegistry(storage, notifier)

	file, err := registry.Store(context.Background(), "lecture 1.pdf", bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if file.Identifier != "lecture 1.pdf" {
		t.Fatalf("expected identifier to equal supplied name, got %q", file.Identifier)
	}
	if file.StoredPath != "/uploads/lecture 1.pdf" {
		t.Fatalf("unexpected stored path %q", file.StoredPath)
	}
	if file.SizeBytes != 5 {
		t.Fatalf("expected 5 bytes, got %d", file.SizeBytes)
	}
	if len(notifier.published) != 1 || notifier.published[0].Identifier != "lecture 1.pdf" {
		t.Fatalf("expected one upload notification, got %+v", notifier.published)
	}
}

func TestUploadRegistrySameNameOverwrites(t *testing.T) {
	storage := newStorageFake()
	registry := NewUploadRegistry(storage, nil)

	for _, body := range []string{"first", "second"} {
		if _, err := registry.Store(context.Background(), "notes.pdf", strings.NewReader(body)); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
	if len(storage.files) != 1 {
		t.Fatalf("expected a single stored file, got %d", len(storage.files))
	}
	if storage.files["notes.pdf"] != "second" {
		t.Fatalf("expected last write to win, got %q", storage.files["notes.pdf"])
	}
}

func TestUploadRegistryStoreStorageFault(t *testing.T) {
	storage := newStorageFake()
	storage.saveErr = errors.New("disk full")
	registry := NewUploadRegistry(storage, nil)

	_, err := registry.Store(context.Background(), "notes.pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestUploadRegistryRejectsPathSegments(t *testing.T) {
	registry := NewUploadRegistry(newStorageFake(), nil)

	for _, name := range []string{"", "  ", "..", "../etc/passwd", `dir\file.pdf`} {
		_, err := registry.Store(context.Background(), name, strings.NewReader("x"))
		if !domain.IsKind(err, domain.ErrValidation) {
			t.Fatalf("name %q: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestUploadRegistryNotifierFailureDoesNotFailUpload(t *testing.T) {
	registry := NewUploadRegistry(newStorageFake(), &notifierFake{err: errors.New("nats down")})

	if _, err := registry.Store(context.Background(), "a.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
}

func TestUploadRegistryDeleteAllReportsPartialFailure(t *testing.T) {
	storage := newStorageFake()
	storage.files["a.pdf"] = "a"
	storage.files["b.pdf"] = "b"
	storage.files["c.pdf"] = "c"
	storage.deleteErr["b.pdf"] = errors.New("permission denied")
	registry := NewUploadRegistry(storage, nil)

	deleted, err := registry.DeleteAll(context.Background())
	if !domain.IsKind(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}
	if _, ok := storage.files["b.pdf"]; !ok {
		t.Fatalf("expected failed file to remain")
	}
}
