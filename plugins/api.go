package plugins

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/linht/docplug/document"
)

// API exposes the registry and the loader over HTTP
type API struct {
	registry  *Registry
	loader    *Loader
	documents *document.Store
}

// StreamReply is written for every document received on a stream
type StreamReply struct {
	Session string `json:"session"`
	Plugin  string `json:"plugin"`
	Result  any    `json:"result"`
	Error   string `json:"error,omitempty"`
}

// NewAPI creates the plugin API
func NewAPI(registry *Registry, loader *Loader) (*API, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	return &API{registry: registry, loader: loader}, nil
}

// RegisterRoutes adds the plugin routes to the app
func (a *API) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/plugins")

	api.Get("/", a.listPlugins)
	api.Post("/load", a.loadPlugin)
	api.Post("/:name/transform", a.transform)

	// WebSocket endpoint streaming documents through one plugin
	api.Get("/:name/stream", websocket.New(a.handleStream))

	if a.documents != nil {
		a.registerDocumentRoutes(app)
	}
}

// listPlugins handles GET /api/plugins
func (a *API) listPlugins(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.Map{
		"names": a.registry.Names(),
		"types": Types(),
	}, "")
}

// loadPlugin handles POST /api/plugins/load
func (a *API) loadPlugin(c *fiber.Ctx) error {
	var req struct {
		Type string `json:"type"`
	}

	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	if strings.TrimSpace(req.Type) == "" {
		return SendErrorMessage(c, 400, "Type required")
	}

	if err := a.loader.Load(req.Type); err != nil {
		slog.Warn("Plugin load failed", "type", req.Type, "error", err)
		return SendPluginError(c, err)
	}

	return SendSuccess(c, fiber.Map{"names": a.registry.Names()}, "Plugin loaded successfully")
}

// transform handles POST /api/plugins/:name/transform. The document is
// either sent inline or named by its path in the document store.
func (a *API) transform(c *fiber.Ctx) error {
	var req struct {
		Contents *string        `json:"contents"`
		Path     string         `json:"path"`
		Config   map[string]any `json:"config"`
	}

	if err := c.BodyParser(&req); err != nil {
		return SendErrorMessage(c, 400, "Invalid request body")
	}

	var doc *document.Document
	switch {
	case req.Contents != nil:
		doc = document.New(*req.Contents)
	case req.Path != "":
		if a.documents == nil {
			return SendErrorMessage(c, 400, "Document store not configured")
		}
		stored, err := a.documents.Open(req.Path)
		if err != nil {
			return sendStoreError(c, err)
		}
		doc = stored
	}

	name := c.Params("name")
	result, err := a.apply(name, req.Config, doc)
	if err != nil {
		return SendPluginError(c, err)
	}

	return SendSuccess(c, fiber.Map{"plugin": name, "result": result}, "")
}

// handleStream handles WebSocket connections on /api/plugins/:name/stream.
// Settings come from the query string and apply to every message.
func (a *API) handleStream(c *websocket.Conn) {
	name := c.Params("name")
	session := uuid.NewString()
	params := map[string]any{}
	for _, key := range []string{"find", "replace", "separator"} {
		if v := c.Query(key); v != "" {
			params[key] = v
		}
	}

	slog.Info("Stream opened", "session", session, "plugin", name)
	defer slog.Info("Stream closed", "session", session, "plugin", name)

	for {
		messageType, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := c.WriteJSON(a.streamReply(session, name, params, string(msg))); err != nil {
			slog.Debug("Stream write failed", "session", session, "error", err)
			return
		}
	}
}

func (a *API) streamReply(session, name string, params map[string]any, contents string) StreamReply {
	reply := StreamReply{Session: session, Plugin: name}
	result, err := a.apply(name, params, document.New(contents))
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	reply.Result = result
	return reply
}

// apply runs doc through a fresh instance of the named plugin
func (a *API) apply(name string, params map[string]any, doc *document.Document) (any, error) {
	p, err := a.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		if cfg, ok := p.(Configurable); ok {
			if err := cfg.Configure(params); err != nil {
				return nil, err
			}
		}
	}

	return p.Transform(doc)
}
