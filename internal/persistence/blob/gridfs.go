package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hilthontt/chatrelay/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFS stores uploaded blobs in a MongoDB GridFS bucket, addressed by
// their ObjectID hex.
type GridFS struct {
	bucket *gridfs.Bucket
}

func NewGridFS(database *mongo.Database, bucketName string) (*GridFS, error) {
	if database == nil {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if bucketName == "" {
		bucketName = "file"
	}

	bucket, err := gridfs.NewBucket(database, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to create gridfs bucket: %w", err)
	}

	return &GridFS{bucket: bucket}, nil
}

func (s *GridFS) Put(ctx context.Context, name string, r io.Reader) (*domain.StoredFile, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}

	uploadStream, err := s.bucket.OpenUploadStream(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	size, err := io.Copy(uploadStream, r)
	if err != nil {
		_ = uploadStream.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if err := uploadStream.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	id, ok := uploadStream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected file id type %T", domain.ErrUploadFailed, uploadStream.FileID)
	}

	return &domain.StoredFile{
		ID:         id.Hex(),
		Filename:   name,
		Size:       size,
		UploadedAt: time.Now(),
	}, nil
}

func (s *GridFS) Get(ctx context.Context, id string, w io.Writer) error {
	fileID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrFileNotFound
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetReadDeadline(deadline)
	}

	if _, err := s.bucket.DownloadToStream(fileID, w); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("failed to read blob %s: %w", id, err)
	}

	return nil
}
