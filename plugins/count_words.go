package plugins

import (
	"log/slog"
	"strings"

	"github.com/linht/docplug/document"
)

const defaultSeparator = " "

// CountWords counts the words of a document
type CountWords struct {
	separator string
}

// NewCountWords creates a CountWords plugin splitting on single spaces
func NewCountWords() *CountWords {
	return &CountWords{separator: defaultSeparator}
}

// Name returns the plugin identifier
func (p *CountWords) Name() string {
	return "count_words"
}

// Factory returns a constructor for new CountWords plugins
func (p *CountWords) Factory() Factory {
	return func() Plugin { return NewCountWords() }
}

// Configure accepts an optional "separator" setting
func (p *CountWords) Configure(params map[string]any) error {
	v, ok := params["separator"]
	if !ok {
		return nil
	}
	sep, ok := v.(string)
	if !ok || sep == "" {
		return NewArgumentError("separator cannot be empty")
	}
	p.separator = sep
	return nil
}

// Transform implements Plugin; the result is an int.
func (p *CountWords) Transform(doc *document.Document) (any, error) {
	return p.Count(doc)
}

// Count returns the number of separator delimited pieces in doc, or 0 when
// doc holds only whitespace. Empty pieces at the end are not counted.
func (p *CountWords) Count(doc *document.Document) (int, error) {
	if doc == nil {
		return 0, NewArgumentError("document cannot be null")
	}
	contents := doc.Contents()
	slog.Debug("Counting words", "plugin", p.Name(), "length", len(contents))
	if isBlank(contents) {
		return 0, nil
	}

	sep := p.separator
	if sep == "" {
		sep = defaultSeparator
	}
	parts := strings.Split(contents, sep)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return len(parts), nil
}

func init() {
	RegisterType(&CountWords{})
}
