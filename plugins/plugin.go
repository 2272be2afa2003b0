package plugins

import "github.com/linht/docplug/document"

// Plugin interface that all document plugins must implement
type Plugin interface {
	// Name returns the plugin identifier used as the registry key
	Name() string

	// Factory returns a constructor producing new, independent instances
	// of the same plugin
	Factory() Factory

	// Transform applies the plugin to a document
	Transform(doc *document.Document) (any, error)
}

// Factory creates a new plugin instance
type Factory func() Plugin

// Initializer is implemented by plugins that replace the default
// self-registration performed when they are loaded.
type Initializer interface {
	Init() error
}

// Configurable is implemented by plugins that accept settings before Transform.
type Configurable interface {
	Configure(params map[string]any) error
}

// Register makes p available by name in the process-wide registry.
func Register(p Plugin) error {
	if p == nil {
		return NewArgumentError("plugin cannot be null")
	}
	return NewRegistry().Add(p.Name(), p.Factory())
}
