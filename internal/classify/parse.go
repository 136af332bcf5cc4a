package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// Defaults substituted for fields the classifier leaves out.
const (
	DefaultTitle    = "Untitled Event"
	DefaultSummary  = "No summary available."
	DefaultCategory = domain.CategoryOther
)

// ErrInvalidFormat marks responses that are not the expected JSON object.
var ErrInvalidFormat = errors.New("AI returned an invalid format")

// FormatError describes a response that could not be interpreted.
type FormatError struct {
	Response string // fence-stripped text, truncated
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid classification response %q: %v", e.Response, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrInvalidFormat) match any FormatError.
func (e *FormatError) Is(target error) bool { return target == ErrInvalidFormat }

// fenceRE matches text wrapped in a single code fence, with an optional
// language tag after the opening delimiter.
var fenceRE = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripCodeFence returns the content of a fenced block, or the trimmed input
// when it is not fenced.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	m := fenceRE.FindStringSubmatch(trimmed)
	if m == nil || m[2] == "" {
		return trimmed
	}
	return strings.TrimSpace(m[2])
}

// ParseResponse turns classifier output into a fully-populated
// Classification. Missing or non-string fields take their defaults and an
// unknown category becomes Other; anything that is not a JSON object is a
// *FormatError.
func ParseResponse(text string) (domain.Classification, error) {
	body := StripCodeFence(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return domain.Classification{}, &FormatError{Response: truncate(body, 200), Err: err}
	}
	if fields == nil {
		return domain.Classification{}, &FormatError{Response: truncate(body, 200), Err: errors.New("response is null")}
	}

	out := domain.Classification{
		Title:    DefaultTitle,
		Summary:  DefaultSummary,
		Category: DefaultCategory,
	}
	if s, ok := stringField(fields, "title"); ok {
		out.Title = s
	}
	if s, ok := stringField(fields, "summary"); ok {
		out.Summary = s
	}
	if s, ok := stringField(fields, "category"); ok {
		out.Category = domain.ParseCategory(s)
	}
	return out, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
