package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/quizway/quizway/internal/quiz"
)

// Parser converts raw document bytes into ordered pages of plain text.
type Parser interface {
	Parse(r io.Reader, filename string) ([]quiz.Page, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// normalizePages runs the text normalization pass over every page.
// Page numbering is preserved.
func normalizePages(pages []quiz.Page) []quiz.Page {
	out := make([]quiz.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, quiz.Page{Number: p.Number, Text: NormalizeText(p.Text)})
	}
	return out
}
