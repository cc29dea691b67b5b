// Package track provides the Track domain entity.
package track

import (
	"path/filepath"
	"strings"
)

// supportedExtensions is the fixed set of playable file formats.
var supportedExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
	".flac": true,
	".mod":  true,
	".xm":   true,
	".it":   true,
	".s3m":  true,
}

// Track represents a local audio file.
// The path is an opaque reference; duplicates are permitted in a playlist.
type Track struct {
	Path string
}

// New creates a Track from a file path.
func New(path string) Track {
	return Track{Path: path}
}

// Name returns the display name of the track (the file base name).
func (t Track) Name() string {
	return filepath.Base(t.Path)
}

// IsSupported reports whether the file extension belongs to the supported
// format set. The check is case-insensitive.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the supported extensions in a stable order.
func SupportedExtensions() []string {
	return []string{".mp3", ".ogg", ".wav", ".flac", ".mod", ".xm", ".it", ".s3m"}
}
