package files

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/chatrelay/internal/domain"
	"github.com/hilthontt/chatrelay/internal/infrastructure/json"
	"github.com/hilthontt/chatrelay/internal/infrastructure/logging"
	"github.com/hilthontt/chatrelay/internal/infrastructure/metrics"
)

type Handler struct {
	store    domain.BlobStore
	maxBytes int64
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewHandler(store domain.BlobStore, maxBytes int64, logger logging.Logger, m *metrics.Metrics) *Handler {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &Handler{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger,
		metrics:  m,
	}
}

// UploadHandler godoc
// @Summary      Upload a file
// @Description  Accepts a single multipart file under the "file" field and stores it in the blob store
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "File to upload"
// @Success      200 {object} uploadResponse "File stored"
// @Failure      400 {object} map[string]interface{} "Missing or oversized file field"
// @Failure      500 {object} map[string]interface{} "Blob store write failed"
// @Router       /upload [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		json.WriteBadRequestError(w, "No file uploaded")
		return
	}
	defer file.Close()

	stored, err := h.store.Put(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error(logging.Storage, logging.Upload, "blob store write failed", map[logging.ExtraKey]any{
			"filename":            header.Filename,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
		return
	}

	h.metrics.UploadAccepted(stored.Size)
	h.logger.Info(logging.Storage, logging.Upload, "file stored", map[logging.ExtraKey]any{
		logging.FileId: stored.ID,
		"filename":     stored.Filename,
		"bytes":        stored.Size,
	})

	json.Write(w, http.StatusOK, uploadResponse{
		Success:  true,
		FileID:   stored.ID,
		FileURL:  absoluteFileURL(r, stored.ID),
		Filename: stored.Filename,
	})
}

// DownloadHandler godoc
// @Summary      Download a file
// @Description  Streams the stored bytes for the given file id
// @Tags         files
// @Produce      application/octet-stream
// @Param        fileId path string true "File ID"
// @Success      200 {file} binary "File contents"
// @Failure      404 {object} map[string]interface{} "Unknown file id"
// @Failure      500 {object} map[string]interface{} "Blob store read failed"
// @Router       /file/{fileId} [get]
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		json.WriteBadRequestError(w, "File ID is missing")
		return
	}

	// Buffer the blob so a store error can still become a clean status code.
	var buf bytes.Buffer
	if err := h.store.Get(r.Context(), fileID, &buf); err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			json.WriteNotFoundError(w, "File not found")
			return
		}

		h.logger.Error(logging.Storage, logging.Download, "blob store read failed", map[logging.ExtraKey]any{
			logging.FileId:       fileID,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
		return
	}

	h.metrics.DownloadServed()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// absoluteFileURL rebuilds the URL the same way the web client composes
// media links: scheme plus Host header plus the download path.
func absoluteFileURL(r *http.Request, fileID string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/file/%s", scheme, r.Host, fileID)
}
