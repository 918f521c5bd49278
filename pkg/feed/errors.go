package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat is returned when a document matches none of the
	// three dialect signatures. No partial result accompanies it.
	ErrUnrecognizedFormat = errors.New("feed not recognized as Atom, RSS 1.0 or RSS 2.0")

	// ErrMissingTitle is returned when an RSS channel carries no title.
	ErrMissingTitle = errors.New("rss channel is missing a title")

	// ErrRedirectsDisabled is returned when a redirect response arrives and
	// MaxRedirects is 0.
	ErrRedirectsDisabled = errors.New("redirects are disabled")

	// ErrTooManyRedirects is returned when the configured redirect bound is
	// exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// DateParseError reports a date string no accepted layout could parse.
// Atom normalization propagates it; RSS normalization drops the date field
// and keeps going.
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Value)
}
