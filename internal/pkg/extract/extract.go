package extract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
)

// Counts are the document metrics that drive pricing.
type Counts struct {
	Pages int
	Chars int
}

// Extractor reports page and character counts for an uploaded document.
// Implementations may fail; callers degrade to zero counts on error.
type Extractor interface {
	Extract(path string) (Counts, error)
}

// charsPerPage approximates one standard translation page (the same 1860
// character block the per-block pricing model uses).
const charsPerPage = 1860

// FileExtractor counts pages and characters for plain-text documents.
// Binary formats (pdf/epub/docx) have no parser here and return an error,
// which callers log and fall back to zero counts, mirroring how extraction
// failures have always been handled.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(path string) (Counts, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".txt" {
		return Counts{}, fmt.Errorf("no extractor for %s documents", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	chars := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		chars += utf8.RuneCountInString(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Counts{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	pages := (chars + charsPerPage - 1) / charsPerPage

	return Counts{Pages: pages, Chars: chars}, nil
}

// CountOrZero runs the extractor and degrades to zero counts on failure.
// The failure is logged, never surfaced: an upload must not be rejected
// because counting did not work.
func CountOrZero(e Extractor, path string) Counts {
	counts, err := e.Extract(path)
	if err != nil {
		log.Warnf("[Extract] Counting pages/chars for %s failed: %v", path, err)
		return Counts{}
	}
	return counts
}
