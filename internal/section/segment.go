// Package section partitions cleaned document pages into titled sections
// bounded by detected heading lines.
package section

import (
	"strings"

	"github.com/quizway/quizway/internal/quiz"
)

// Config controls segmentation behavior.
type Config struct {
	MinSectionLen int // sections with shorter content merge into the next one
}

// DefaultConfig returns the tuned default.
func DefaultConfig() Config {
	return Config{MinSectionLen: 120}
}

// Segment splits cleaned pages into ordered sections. Every detected
// heading starts a section holding all lines up to the next heading. When
// no heading is found anywhere, one section spans the whole document.
func Segment(pages []quiz.Page, cfg Config) []quiz.Section {
	if cfg.MinSectionLen <= 0 {
		cfg.MinSectionLen = DefaultConfig().MinSectionLen
	}
	if len(pages) == 0 {
		return nil
	}

	var sections []quiz.Section
	var current *quiz.Section
	var body []string

	flush := func(endPage int) {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		current.EndPage = endPage
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	lastPage := pages[0].Number
	for _, page := range pages {
		for _, line := range strings.Split(page.Text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if h := detectHeading(line); h != nil {
				flush(lastPage)
				current = &quiz.Section{
					Title:     h.title,
					Level:     h.level,
					StartPage: page.Number,
				}
				lastPage = page.Number
				continue
			}
			if current == nil {
				// Body text before any heading.
				current = &quiz.Section{
					Title:     fullDocumentName,
					Level:     1,
					StartPage: page.Number,
				}
			}
			body = append(body, line)
			lastPage = page.Number
		}
	}
	flush(lastPage)

	if len(sections) == 0 {
		return nil
	}

	// A document without real headings collapses to a single section
	// spanning every page.
	if len(sections) == 1 && sections[0].Title == fullDocumentName {
		sections[0].StartPage = pages[0].Number
		sections[0].EndPage = pages[len(pages)-1].Number
	}

	return mergeSmall(sections, cfg.MinSectionLen)
}

// mergeSmall folds any section with undersized content into the following
// one, keeping the later title and the earliest start page. The final
// section is kept whatever its size.
func mergeSmall(sections []quiz.Section, minLen int) []quiz.Section {
	var out []quiz.Section
	for i := 0; i < len(sections); i++ {
		s := sections[i]
		for len(s.Content) < minLen && i+1 < len(sections) {
			next := sections[i+1]
			if s.StartPage < next.StartPage {
				next.StartPage = s.StartPage
			}
			switch {
			case s.Content == "":
			case next.Content == "":
				next.Content = s.Content
			default:
				next.Content = s.Content + "\n" + next.Content
			}
			s = next
			i++
		}
		out = append(out, s)
	}
	return out
}
