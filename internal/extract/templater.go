package extract

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// TemplateError indicates that placeholder substitution produced text that
// no longer parses as JSON. Callers treat it as "no databases fetchable for
// this connection" and move on.
type TemplateError struct {
	Identifier string
	Err        error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("query template broke after substituting %q: %v", e.Identifier, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Render substitutes identifier for every occurrence of placeholder in the
// template and returns the re-parsed payload. The substitution is textual
// on the serialized template rather than a structural path update, so
// arbitrarily-shaped per-connector templates work without code changes. The
// trade-off is that a template without the placeholder is not detectable:
// the call succeeds and the payload goes out unchanged.
func Render(template any, placeholder, identifier string) (any, error) {
	text := oj.JSON(template)
	substituted := strings.ReplaceAll(text, placeholder, escapeString(identifier))

	payload, err := oj.ParseString(substituted)
	if err != nil {
		return nil, &TemplateError{Identifier: identifier, Err: err}
	}
	return payload, nil
}

// escapeString returns the JSON encoding of s without the surrounding
// quotes, so substitution inside a quoted template value stays valid JSON.
func escapeString(s string) string {
	quoted := oj.JSON(s)
	return quoted[1 : len(quoted)-1]
}
