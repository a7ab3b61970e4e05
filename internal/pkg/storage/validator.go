package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// ImageMimeTypes are the formats accepted for catalog images
var ImageMimeTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ValidateFile reads at most maxSize bytes and checks the sniffed MIME type
// against allowed. It returns the data and the detected type.
func ValidateFile(reader io.Reader, allowed []string, maxSize int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, "", ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	for _, t := range allowed {
		if mtype.Is(t) {
			return data, t, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrInvalidMimeType, mtype.String())
}

// GetExtensionForMime returns the file extension for a MIME type
func GetExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
