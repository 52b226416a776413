package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/quizway/quizway/internal/quiz"
)

// PDFParser extracts per-page plain text from PDF bytes.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]quiz.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &quiz.ExtractionError{Format: "pdf", Err: fmt.Errorf("read input: %w", err)}
	}
	if len(data) == 0 {
		return nil, &quiz.ExtractionError{Format: "pdf", Err: fmt.Errorf("empty file")}
	}

	pages, err := extractPDFPages(data)
	if err != nil {
		return nil, &quiz.ExtractionError{Format: "pdf", Err: err}
	}
	return normalizePages(pages), nil
}

// extractPDFPages reads text page by page. When per-page extraction yields
// nothing but the whole-document stream does, the text is split evenly
// across the reported page count so downstream page heuristics still work.
func extractPDFPages(data []byte) (pages []quiz.Page, err error) {
	// The decoder panics on some malformed files; treat that as a
	// decode error rather than taking the process down.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("pdf decoder panic: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	if numPages <= 0 {
		return nil, fmt.Errorf("pdf reports no pages")
	}

	gotText := false
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			if t, perr := page.GetPlainText(nil); perr == nil {
				text = t
			}
		}
		if strings.TrimSpace(text) != "" {
			gotText = true
		}
		pages = append(pages, quiz.Page{Number: i, Text: text})
	}
	if gotText {
		return pages, nil
	}

	// No page delivered text on its own. Some PDFs only yield a single
	// undelimited stream; fall back to an even split of it.
	whole, werr := wholeDocumentText(reader)
	if werr != nil || strings.TrimSpace(whole) == "" {
		// Legitimately empty (likely a scanned PDF) — return the empty
		// pages and let the caller decide on OCR.
		return pages, nil
	}
	return splitEvenly(whole, numPages), nil
}

func wholeDocumentText(reader *pdflib.Reader) (string, error) {
	rc, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if _, err := io.Copy(&buf, rc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// splitEvenly divides text into n approximately equal pages, breaking at the
// nearest line boundary so no line straddles two pages.
func splitEvenly(text string, n int) []quiz.Page {
	if n <= 1 {
		return []quiz.Page{{Number: 1, Text: text}}
	}
	target := len(text) / n

	pages := make([]quiz.Page, 0, n)
	rest := text
	for i := 1; i < n && rest != ""; i++ {
		cut := target
		if cut >= len(rest) {
			cut = len(rest)
		} else if nl := strings.IndexByte(rest[cut:], '\n'); nl >= 0 {
			cut += nl + 1
		} else {
			cut = len(rest)
		}
		pages = append(pages, quiz.Page{Number: i, Text: rest[:cut]})
		rest = rest[cut:]
	}
	pages = append(pages, quiz.Page{Number: len(pages) + 1, Text: rest})
	for len(pages) < n {
		pages = append(pages, quiz.Page{Number: len(pages) + 1, Text: ""})
	}
	return pages
}
