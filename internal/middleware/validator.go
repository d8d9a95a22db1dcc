package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

// ErrInvalidInput marks a request the client must fix before retrying.
var ErrInvalidInput = errors.New("invalid input")

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var allowedImageType = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// ValidateImageUpload checks the filename extension and the sniffed content
// type, and returns the content type to store with the image.
func ValidateImageUpload(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("%w: file type %q not allowed (allowed: png, jpg, jpeg)", ErrInvalidInput, ext)
	}
	ct := http.DetectContentType(data)
	if !allowedImageType[ct] {
		return "", fmt.Errorf("%w: content is %s, not a png or jpeg image", ErrInvalidInput, ct)
	}
	return ct, nil
}

// ValidateSessionID validates session ID format
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid session ID format", ErrInvalidInput)
	}
	return nil
}

// ValidateAudioKey accepts keys produced by the announcer: sessions/{uuid}/{uuid}.mp3
func ValidateAudioKey(key string) error {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "sessions" {
		return fmt.Errorf("%w: invalid audio key", ErrInvalidInput)
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return fmt.Errorf("%w: invalid audio key", ErrInvalidInput)
	}
	name, ok := strings.CutSuffix(parts[2], ".mp3")
	if !ok {
		return fmt.Errorf("%w: invalid audio key", ErrInvalidInput)
	}
	if _, err := uuid.Parse(name); err != nil {
		return fmt.Errorf("%w: invalid audio key", ErrInvalidInput)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
