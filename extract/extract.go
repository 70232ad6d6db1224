// Package extract turns uploaded files into raw text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/quaero/ai"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var plainTextExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
}

// Extractor reads plain-text formats directly and PDFs through ledongthuc/pdf.
type Extractor struct{}

var _ ai.TextExtractor = (*Extractor)(nil)

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether path has an extension Extract can handle.
func Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return plainTextExtensions[ext] || ext == ".pdf"
}

// SupportedExtensions returns every extension Extract handles, with the leading dot.
func SupportedExtensions() []string {
	exts := []string{".pdf"}
	for ext := range plainTextExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Extract returns the text content of the file at path with NUL bytes and
// invalid UTF-8 removed. The result may be empty.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	var (
		text string
		err  error
	)
	switch {
	case plainTextExtensions[ext]:
		text, err = readPlain(path)
	case ext == ".pdf":
		text, err = readPDF(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}
	return sanitize(text), nil
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return buf.String(), nil
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.ToValidUTF8(s, "")
}
