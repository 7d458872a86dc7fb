package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/chatrelay/internal/domain"
)

type memoryEntry struct {
	name       string
	data       []byte
	uploadedAt time.Time
}

// InMemory keeps blobs in process memory. Used by the "memory" storage
// driver for local development and by tests.
type InMemory struct {
	files map[string]memoryEntry
	mu    sync.RWMutex
}

func NewInMemory() *InMemory {
	return &InMemory{
		files: make(map[string]memoryEntry),
	}
}

func (s *InMemory) Put(ctx context.Context, name string, r io.Reader) (*domain.StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.ErrUploadFailed
	}

	now := time.Now()
	id := uuid.NewString()

	s.mu.Lock()
	s.files[id] = memoryEntry{
		name:       name,
		data:       data,
		uploadedAt: now,
	}
	s.mu.Unlock()

	return &domain.StoredFile{
		ID:         id,
		Filename:   name,
		Size:       int64(len(data)),
		UploadedAt: now,
	}, nil
}

func (s *InMemory) Get(ctx context.Context, id string, w io.Writer) error {
	s.mu.RLock()
	entry, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		return domain.ErrFileNotFound
	}

	_, err := io.Copy(w, bytes.NewReader(entry.data))
	return err
}
