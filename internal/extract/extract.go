package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// DefaultMaxFileBytes caps a single uploaded item at 15 MB.
	DefaultMaxFileBytes = 15 << 20

	// DefaultMaxChars bounds how much extracted text one document may
	// contribute to a prompt. Anything past it is dropped.
	DefaultMaxChars = 15000
)

// Extractor turns uploaded documents into inline text fragments for the
// ingestion pipeline. It never fails: unreadable or unsupported files become
// short placeholder fragments so one bad upload cannot abort a message.
type Extractor struct {
	maxFileBytes int
	maxChars     int
	logger       *slog.Logger
}

func New(maxFileBytes, maxChars int, logger *slog.Logger) *Extractor {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{maxFileBytes: maxFileBytes, maxChars: maxChars, logger: logger}
}

// Fragment converts one uploaded item into a prompt-ready fragment. Extracted
// documents carry a header naming the source file; non-extractable media get a
// received-file note so the model still sees the attachment existed.
func (e *Extractor) Fragment(data []byte, name, mediaType string) string {
	if len(data) > e.maxFileBytes {
		e.logger.Warn("upload exceeds size limit", "file", name, "bytes", len(data))
		return fmt.Sprintf("[Could not read %s: file too large]", name)
	}

	switch {
	case mediaType == "application/pdf":
		text, err := pdfText(data)
		if err != nil {
			e.logger.Warn("pdf extraction failed", "file", name, "error", err)
			return fmt.Sprintf("[Could not read %s]", name)
		}
		e.logger.Info("extracted pdf", "file", name, "chars", len(text))
		return fmt.Sprintf("--- Extracted from %s ---\n%s", name, e.truncate(text))

	case isTextual(mediaType):
		return fmt.Sprintf("--- Extracted from %s ---\n%s", name, e.truncate(string(data)))

	default:
		return fmt.Sprintf("User uploaded file: %s (%s)", name, mediaType)
	}
}

func (e *Extractor) truncate(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= e.maxChars {
		return s
	}
	return string(runes[:e.maxChars])
}

func isTextual(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/x-yaml":
		return true
	}
	return false
}

func pdfText(data []byte) (text string, err error) {
	// The pdf library panics on some malformed files; keep that contained.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return sb.String(), nil
}
