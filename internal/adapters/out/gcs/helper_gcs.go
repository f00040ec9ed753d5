// internal/adapters/out/gcs/helper_gcs.go
package gcs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"
)

// sanitizePathSegment normalizes a path segment for GCS object paths.
// - removes separators
// - trims dots/spaces
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Trim(s, ". ")
}

// sanitizeFolder keeps "/" between segments but cleans each one.
func sanitizeFolder(folder string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(folder), "/"), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := sanitizePathSegment(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

// extensionForMIME maps the accepted image types to a file extension.
func extensionForMIME(mime string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	case "image/gif":
		return ".gif", true
	default:
		return "", false
	}
}

// ensureExtensionByMIME appends an extension based on MIME when fileName has no extension.
func ensureExtensionByMIME(fileName string, mime string) string {
	if strings.Contains(path.Base(strings.ToLower(fileName)), ".") {
		return fileName
	}
	ext, _ := extensionForMIME(mime)
	return fileName + ext
}

// newObjectID generates a random-ish id for object paths.
func newObjectID() string {
	// 12 bytes random => 24 hex chars
	b := make([]byte, 12)
	if _, err := rand.Read(b); err == nil {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%d", time.Now().UTC().UnixNano())
}
