package extract

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFragment_PlainText(t *testing.T) {
	e := New(0, 0, discardLogger())

	got := e.Fragment([]byte("binary search notes\n"), "notes.txt", "text/plain")

	if !strings.HasPrefix(got, "--- Extracted from notes.txt ---") {
		t.Errorf("expected source header, got %q", got)
	}
	if !strings.Contains(got, "binary search notes") {
		t.Errorf("expected file content in fragment, got %q", got)
	}
}

func TestFragment_TruncatesLongText(t *testing.T) {
	e := New(0, 10, discardLogger())

	got := e.Fragment([]byte("0123456789abcdef"), "big.txt", "text/plain")

	if !strings.HasSuffix(got, "0123456789") {
		t.Errorf("expected text truncated to 10 chars, got %q", got)
	}
	if strings.Contains(got, "abcdef") {
		t.Errorf("expected truncated tail to be dropped, got %q", got)
	}
}

func TestFragment_UnsupportedMediaType(t *testing.T) {
	e := New(0, 0, discardLogger())

	got := e.Fragment([]byte{0xff, 0xd8}, "photo.jpg", "image/jpeg")

	want := "User uploaded file: photo.jpg (image/jpeg)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFragment_CorruptPDF(t *testing.T) {
	e := New(0, 0, discardLogger())

	got := e.Fragment([]byte("not a pdf at all"), "lecture.pdf", "application/pdf")

	want := "[Could not read lecture.pdf]"
	if got != want {
		t.Errorf("expected failure placeholder %q, got %q", want, got)
	}
}

func TestFragment_OversizedFile(t *testing.T) {
	e := New(8, 0, discardLogger())

	got := e.Fragment([]byte("123456789"), "huge.txt", "text/plain")

	if !strings.Contains(got, "Could not read huge.txt") {
		t.Errorf("expected oversize placeholder, got %q", got)
	}
}

func TestIsTextual(t *testing.T) {
	cases := map[string]bool{
		"text/plain":       true,
		"text/markdown":    true,
		"application/json": true,
		"application/pdf":  false,
		"image/png":        false,
	}
	for mt, want := range cases {
		if got := isTextual(mt); got != want {
			t.Errorf("isTextual(%q) = %v, want %v", mt, got, want)
		}
	}
}
