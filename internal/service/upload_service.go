package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// ErrUploadTypeNotAllowed indicates the upload is not a supported image type.
var ErrUploadTypeNotAllowed = errors.New("file type not allowed")

// ErrUploadTooLarge indicates the payload exceeded the configured limit.
var ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")

// FileUploader abstracts the image storage destination.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService stores whiteboard captures and returns their public URL.
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type uploadService struct {
	storage  FileUploader
	maxBytes int64
	logger   zerolog.Logger
}

// NewUploadService constructs an UploadService instance.
func NewUploadService(storage FileUploader, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &uploadService{
		storage:  storage,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
		logger:   logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("upload file is required")
	}

	if file.Size > s.maxBytes {
		return "", ErrUploadTooLarge
	}

	if err := s.checkImageType(file); err != nil {
		return "", err
	}

	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	url, err := s.storage.Upload(ctx, file.Filename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info().Str("file", file.Filename).Msg("whiteboard capture uploaded")

	return url, nil
}

func (s *uploadService) checkImageType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	for _, allowed := range []string{"image/png", "image/jpeg", "image/webp"} {
		if mime.Is(allowed) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, mime.String())
}
