package quiz

import (
	"errors"
	"fmt"
)

// ErrInputTooShort is returned when cleaned document text is too small to
// synthesize meaningful questions from. It is the only pipeline failure
// surfaced to the caller as a rejection.
var ErrInputTooShort = errors.New("document text too short for quiz generation")

// ErrTooManyPages is returned when a document exceeds the configured page
// limit before any expensive processing starts.
var ErrTooManyPages = errors.New("document exceeds the page limit")

// ExtractionError indicates the source bytes could not be decoded as a
// document. It usually means an empty upload, a corrupt file, or a scanned
// (image-only) PDF that needs OCR.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s text: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError reports why an oracle response failed schema validation.
// It is absorbed by the pipeline and never surfaced to the end user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid quiz response: " + e.Reason
}
