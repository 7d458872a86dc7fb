package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrUploadFailed = errors.New("upload failed")
)

// StoredFile describes a blob after a successful upload.
type StoredFile struct {
	ID         string    `json:"fileId"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// BlobStore is the opaque "store bytes, fetch bytes by id" contract the
// file relay depends on. Implementations live in persistence/blob.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (*StoredFile, error)
	Get(ctx context.Context, id string, w io.Writer) error
}
