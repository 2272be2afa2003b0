// Package document holds the text value that plugins transform.
package document

import (
	"fmt"
	"os"
)

// Document is an immutable piece of text handed to plugins
type Document struct {
	contents string
}

// New wraps contents in a Document
func New(contents string) *Document {
	return &Document{contents: contents}
}

// Read loads a Document from the file at path
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return New(string(data)), nil
}

// Contents returns the document text
func (d *Document) Contents() string {
	return d.contents
}
