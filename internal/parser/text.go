package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/quizway/quizway/internal/quiz"
)

// TextParser handles plain text files. The whole file becomes one page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]quiz.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, &quiz.ExtractionError{Format: "txt", Err: err}
	}

	return normalizePages([]quiz.Page{{Number: 1, Text: buf.String()}}), nil
}

// sectionedPages turns heading/body block pairs into synthetic pages, one
// per top-level section, so the segmentation heuristics see each heading at
// the start of a page. Used by the structured (md/html/docx) frontends.
func sectionedPages(blocks []block) []quiz.Page {
	var pages []quiz.Page
	var buf strings.Builder
	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			pages = append(pages, quiz.Page{Number: len(pages) + 1, Text: buf.String()})
		}
		buf.Reset()
	}
	for _, b := range blocks {
		if b.heading && b.level == 1 {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(b.text)
		if b.heading {
			buf.WriteString("\n")
		}
	}
	flush()
	if len(pages) == 0 {
		return []quiz.Page{{Number: 1, Text: ""}}
	}
	return pages
}

// block is a heading or body paragraph from a structured document.
type block struct {
	text    string
	heading bool
	level   int
}
