package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
)

// UploadRegistry keeps at most one stored file per identifier. The identifier
// is the supplied name itself; storing the same name again overwrites.
type UploadRegistry struct {
	storage  ports.ObjectStorage
	notifier ports.UploadNotifier
}

func NewUploadRegistry(storage ports.ObjectStorage, notifier ports.UploadNotifier) *UploadRegistry {
	return &UploadRegistry{
		storage:  storage,
		notifier: notifier,
	}
}

func (r *UploadRegistry) Store(
	ctx context.Context,
	suppliedName string,
	body io.Reader,
) (*domain.UploadedFile, error) {
	identifier, err := identifierFromName(suppliedName)
	if err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "store upload", err)
	}

	size, err := r.storage.Save(ctx, identifier, body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "store upload", err)
	}

	file := &domain.UploadedFile{
		Identifier: identifier,
		StoredPath: r.storage.Locate(identifier),
		SizeBytes:  size,
	}

	if r.notifier != nil {
		if err := r.notifier.PublishUploaded(ctx, *file); err != nil {
			slog.Warn("upload_notify_failed", "filename", identifier, "error", err)
		}
	}
	return file, nil
}

func (r *UploadRegistry) Delete(ctx context.Context, identifier string) error {
	key, err := identifierFromName(identifier)
	if err != nil {
		return domain.WrapError(domain.ErrValidation, "delete upload", err)
	}
	if err := r.storage.Delete(ctx, key); err != nil {
		return domain.WrapError(domain.ErrStorage, "delete upload", err)
	}
	return nil
}

// DeleteAll removes every stored upload and reports how many were removed.
// It keeps going past individual failures and returns them joined.
func (r *UploadRegistry) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.storage.List(ctx)
	if err != nil {
		return 0, domain.WrapError(domain.ErrStorage, "list uploads", err)
	}

	deleted := 0
	var errs []error
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		deleted++
	}
	if len(errs) > 0 {
		return deleted, domain.WrapError(domain.ErrStorage, "delete uploads", errors.Join(errs...))
	}
	return deleted, nil
}

// identifierFromName keeps the supplied name as-is and only rejects names
// that cannot address a single file inside the storage root.
func identifierFromName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("file name is required")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("file name %q must not contain path segments", name)
	}
	return name, nil
}
