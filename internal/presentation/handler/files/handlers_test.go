package files

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/chatrelay/internal/infrastructure/logging"
	"github.com/hilthontt/chatrelay/internal/persistence/blob"
)

type nopLogger struct{}

func (nopLogger) Init()                                                              {}
func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                              {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Infof(string, ...any)                                               {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warnf(string, ...any)                                               {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                              {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                              {}

func newTestRouter(maxBytes int64) (*chi.Mux, *blob.InMemory) {
	store := blob.NewInMemory()
	h := NewHandler(store, maxBytes, nopLogger{}, nil)

	r := chi.NewRouter()
	r.Post("/upload", h.UploadHandler)
	r.Get("/file/{fileId}", h.DownloadHandler)
	return r, store
}

func multipartBody(t *testing.T, field, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestUploadThenDownloadRoundTrip(t *testing.T) {
	router, _ := newTestRouter(1 << 20)
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}

	body, contentType := multipartBody(t, "file", "cat.png", payload)
	req := httptest.NewRequest(http.MethodPost, "http://localhost:5013/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		FileID   string `json:"fileId"`
		FileURL  string `json:"fileUrl"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	if !resp.Success {
		t.Fatal("expected success to be true")
	}
	if resp.Filename != "cat.png" {
		t.Fatalf("expected original filename, got %q", resp.Filename)
	}
	wantURL := "http://localhost:5013/file/" + resp.FileID
	if resp.FileURL != wantURL {
		t.Fatalf("expected file url %q, got %q", wantURL, resp.FileURL)
	}

	dlReq := httptest.NewRequest(http.MethodGet, "/file/"+resp.FileID, nil)
	dlRec := httptest.NewRecorder()
	router.ServeHTTP(dlRec, dlReq)

	if dlRec.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", dlRec.Code)
	}
	if got := dlRec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream, got %q", got)
	}
	downloaded, _ := io.ReadAll(dlRec.Body)
	if !bytes.Equal(downloaded, payload) {
		t.Fatal("downloaded bytes differ from uploaded bytes")
	}
}

func TestUploadWithoutFileFieldIsRejected(t *testing.T) {
	router, _ := newTestRouter(1 << 20)

	body, contentType := multipartBody(t, "attachment", "cat.png", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadWithoutMultipartBodyIsRejected(t *testing.T) {
	router, _ := newTestRouter(1 << 20)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDownloadUnknownIDReturns404(t *testing.T) {
	router, _ := newTestRouter(1 << 20)

	req := httptest.NewRequest(http.MethodGet, "/file/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestOversizedUploadIsRejected(t *testing.T) {
	router, _ := newTestRouter(128)

	body, contentType := multipartBody(t, "file", "big.bin", bytes.Repeat([]byte{0xaa}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("oversized upload must not succeed")
	}
}
