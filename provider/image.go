package provider

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaType guesses the MIME type of an image file from its extension.
// Page renderers emit JPEG by default, so that is the fallback.
func MediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// EncodeImage reads an image file and returns its base64 encoding.
func EncodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImageDataURL reads an image file and returns a data URL suitable for
// OpenAI-style image content parts.
func ImageDataURL(path string) (string, error) {
	encoded, err := EncodeImage(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", MediaType(path), encoded), nil
}
