package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// textExtensions are the file types the plain-text source accepts.
// Binary formats (PDF, DOCX, images) are handled by external parsing
// collaborators; this source only covers text-bearing files.
var textExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".text":     {},
	".csv":      {},
}

// FileTextExtractor reads text content from local document files.
// Failures are per-file: an unsupported or unreadable file produces an
// error for that file only, which the coordinator records and skips.
type FileTextExtractor struct {
	// MaxBytes caps how much of a single file is read. Zero means the
	// default cap.
	MaxBytes int64
}

const defaultMaxFileBytes = 10 << 20 // 10 MiB

// NewFileTextExtractor returns a text source with the default size cap.
func NewFileTextExtractor() *FileTextExtractor { return &FileTextExtractor{} }

// Extract returns the text content of the file at path.
func (f *FileTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := textExtensions[ext]; !ok {
		return "", fmt.Errorf("unsupported file format %q: %s", ext, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxFileBytes
	}
	if info.Size() > maxBytes {
		return "", fmt.Errorf("file %s exceeds size limit (%d bytes)", path, maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("file %s is not valid UTF-8 text", path)
	}
	return text, nil
}
