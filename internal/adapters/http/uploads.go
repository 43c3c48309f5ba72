package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
)

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(rt.opts.UploadMaxMemoryBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		slog.Warn("upload_form_invalid", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
	if r.MultipartForm != nil {
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload("missing", 0)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	stored, err := rt.uploads.Store(r.Context(), header.Filename, file)
	if err != nil {
		rt.recordUpload("failed", 0)
		slog.Error("upload_store_failed",
			"request_id", requestIDFromContext(r.Context()),
			"filename", header.Filename,
			"error", err,
		)
		writeError(w, err)
		return
	}
	rt.recordUpload("stored", stored.SizeBytes)
	slog.Info("upload_stored", "filename", stored.Identifier, "size_bytes", stored.SizeBytes)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"filename": stored.Identifier,
		"path":     stored.StoredPath,
	})
}

// cleanup removes every stored upload. It is called once per client logout.
func (rt *Router) cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := rt.uploads.DeleteAll(r.Context())
	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordCleanup(rt.opts.Service, deleted)
	}
	if err != nil {
		slog.Error("cleanup_failed",
			"request_id", requestIDFromContext(r.Context()),
			"deleted", deleted,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "deleted": deleted})
}

func (rt *Router) recordUpload(status string, size int64) {
	if rt.opts.Metrics == nil {
		return
	}
	rt.opts.Metrics.RecordUpload(rt.opts.Service, status, size)
}
