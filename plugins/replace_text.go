package plugins

import (
	"strings"

	"github.com/linht/docplug/document"
)

// ReplaceText replaces every occurrence of one string with another
type ReplaceText struct {
	find    string
	replace string
	set     bool
}

// NewReplaceText creates an unconfigured ReplaceText plugin
func NewReplaceText() *ReplaceText {
	return &ReplaceText{}
}

// Name returns the plugin identifier
func (p *ReplaceText) Name() string {
	return "replace_text"
}

// Factory returns a constructor for new, unconfigured ReplaceText plugins
func (p *ReplaceText) Factory() Factory {
	return func() Plugin { return NewReplaceText() }
}

// SetReplace sets the text to find and its replacement
func (p *ReplaceText) SetReplace(find, replace string) {
	p.find = find
	p.replace = replace
	p.set = true
}

// Configure reads the "find" and "replace" settings. Both are required.
func (p *ReplaceText) Configure(params map[string]any) error {
	find, ok := params["find"].(string)
	if !ok {
		return NewArgumentError("find cannot be null")
	}
	replace, ok := params["replace"].(string)
	if !ok {
		return NewArgumentError("replace cannot be null")
	}
	p.SetReplace(find, replace)
	return nil
}

// Transform implements Plugin; the result is a string.
func (p *ReplaceText) Transform(doc *document.Document) (any, error) {
	return p.Replace(doc)
}

// Replace returns the contents of doc with the configured replacement applied
func (p *ReplaceText) Replace(doc *document.Document) (string, error) {
	if doc == nil {
		return "", NewArgumentError("document cannot be null")
	}
	if !p.set {
		return "", NewArgumentError("find/replace values not set")
	}
	return strings.ReplaceAll(doc.Contents(), p.find, p.replace), nil
}

func init() {
	RegisterType(&ReplaceText{})
}
