package plugins

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linht/docplug/document"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	resetRegistry(t)

	api, err := NewAPI(NewRegistry(), Instance())
	require.NoError(t, err)

	app := fiber.New()
	api.RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out APIResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestNewAPI_Validation(t *testing.T) {
	_, err := NewAPI(nil, Instance())
	require.Error(t, err)
	_, err = NewAPI(NewRegistry(), nil)
	require.Error(t, err)
}

func TestAPI_ListAndLoad(t *testing.T) {
	app := newTestApp(t)
	r := require.New(t)

	status, resp := doJSON(t, app, http.MethodGet, "/api/plugins", "")
	r.Equal(http.StatusOK, status)
	r.True(resp.Success)
	data := resp.Data.(map[string]any)
	r.Empty(data["names"])
	r.Contains(data["types"], "github.com/linht/docplug/plugins.CountWords")

	status, resp = doJSON(t, app, http.MethodPost, "/api/plugins/load",
		`{"type":"github.com/linht/docplug/plugins.CountWords"}`)
	r.Equal(http.StatusOK, status)
	r.True(resp.Success)
	r.Equal("Plugin loaded successfully", resp.Message)
	r.Equal([]any{"count_words"}, resp.Data.(map[string]any)["names"])
}

func TestAPI_LoadErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "blank type", body: `{"type":"  "}`, status: http.StatusBadRequest, message: "Type required"},
		{name: "bad body", body: `{`, status: http.StatusBadRequest, message: "Invalid request body"},
		{name: "unknown type", body: `{"type":"nope.Missing"}`, status: http.StatusUnprocessableEntity, message: "error loading class 'nope.Missing'"},
		{
			name:    "not a plugin",
			body:    `{"type":"github.com/linht/docplug/plugins.notAPlugin"}`,
			status:  http.StatusUnprocessableEntity,
			message: "class 'github.com/linht/docplug/plugins.notAPlugin' is not of type DocumentPlugin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := doJSON(t, app, http.MethodPost, "/api/plugins/load", tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestAPI_Transform(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, Load(TypeName(&CountWords{})))
	require.NoError(t, Load(TypeName(&ReplaceText{})))

	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		result  any
		message string
	}{
		{
			name:   "count words",
			path:   "/api/plugins/count_words/transform",
			body:   `{"contents":"Star Wars"}`,
			status: http.StatusOK,
			result: float64(2),
		},
		{
			name:   "count with separator",
			path:   "/api/plugins/count_words/transform",
			body:   `{"contents":"a;b;c","config":{"separator":";"}}`,
			status: http.StatusOK,
			result: float64(3),
		},
		{
			name:   "replace text",
			path:   "/api/plugins/replace_text/transform",
			body:   `{"contents":"R2-D2","config":{"find":"2","replace":"8"}}`,
			status: http.StatusOK,
			result: "R8-D8",
		},
		{
			name:    "replace without config",
			path:    "/api/plugins/replace_text/transform",
			body:    `{"contents":"R2-D2"}`,
			status:  http.StatusBadRequest,
			message: "find/replace values not set",
		},
		{
			name:    "missing contents",
			path:    "/api/plugins/count_words/transform",
			body:    `{}`,
			status:  http.StatusBadRequest,
			message: "document cannot be null",
		},
		{
			name:    "unknown plugin",
			path:    "/api/plugins/never_added/transform",
			body:    `{"contents":"x"}`,
			status:  http.StatusNotFound,
			message: "name doesn't exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := doJSON(t, app, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.False(t, resp.Success)
				assert.Equal(t, tt.message, resp.Error)
				return
			}
			require.True(t, resp.Success)
			assert.Equal(t, tt.result, resp.Data.(map[string]any)["result"])
		})
	}
}

func TestAPI_TransformNilPlugin(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, NewRegistry().Add("hollow", func() Plugin { return nil }))

	status, resp := doJSON(t, app, http.MethodPost, "/api/plugins/hollow/transform", `{"contents":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, resp.Success)
	assert.Equal(t, `factory for "hollow" returned no plugin`, resp.Error)
}

func TestAPI_StreamReply(t *testing.T) {
	resetRegistry(t)
	require.NoError(t, Load(TypeName(&ReplaceText{})))

	api, err := NewAPI(NewRegistry(), Instance())
	require.NoError(t, err)

	params := map[string]any{"find": "ar", "replace": "art"}
	reply := api.streamReply("s1", "replace_text", params, "Star Wars")
	assert.Equal(t, StreamReply{Session: "s1", Plugin: "replace_text", Result: "Start Warts"}, reply)

	reply = api.streamReply("s1", "replace_text", nil, "Star Wars")
	assert.Nil(t, reply.Result)
	assert.Equal(t, "find/replace values not set", reply.Error)

	reply = api.streamReply("s2", "missing", nil, "x")
	assert.Equal(t, "name doesn't exist", reply.Error)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(NewArgumentError("x")))
	assert.Equal(t, http.StatusNotFound, statusFor(newNotFoundError("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&LoadError{TypeName: "x", Err: NewArgumentError("y")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.EOF))
}

func newDocumentsApp(t *testing.T) (*fiber.App, *document.Store) {
	t.Helper()
	resetRegistry(t)
	require.NoError(t, Load(TypeName(&CountWords{})))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lorem.txt"), []byte("Lorem ipsum dolor sit amet"), 0o644))
	store, err := document.NewStore(root, 64)
	require.NoError(t, err)

	api, err := NewAPI(NewRegistry(), Instance())
	require.NoError(t, err)
	api.SetDocuments(store)

	app := fiber.New()
	api.RegisterRoutes(app)
	return app, store
}

func TestAPI_TransformStoredDocument(t *testing.T) {
	app, _ := newDocumentsApp(t)

	status, resp := doJSON(t, app, http.MethodPost, "/api/plugins/count_words/transform", `{"path":"lorem.txt"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), resp.Data.(map[string]any)["result"])

	status, resp = doJSON(t, app, http.MethodPost, "/api/plugins/count_words/transform", `{"path":"missing.txt"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Document not found", resp.Error)

	status, _ = doJSON(t, app, http.MethodPost, "/api/plugins/count_words/transform", `{"path":"../lorem.txt"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_TransformPathWithoutStore(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, Load(TypeName(&CountWords{})))

	status, resp := doJSON(t, app, http.MethodPost, "/api/plugins/count_words/transform", `{"path":"lorem.txt"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Document store not configured", resp.Error)

	// document routes are not registered without a store
	req := httptest.NewRequest(http.MethodGet, "/api/documents/list", nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAPI_ListDocuments(t *testing.T) {
	app, _ := newDocumentsApp(t)

	status, resp := doJSON(t, app, http.MethodGet, "/api/documents/list", "")
	require.Equal(t, http.StatusOK, status)
	items := resp.Data.(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "lorem.txt", items[0].(map[string]any)["path"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/documents/list?path=nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func uploadRequest(t *testing.T, name, contents string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAPI_UploadAndDownload(t *testing.T) {
	app, store := newDocumentsApp(t)

	res, err := app.Test(uploadRequest(t, "wars.txt", "Star Wars"), -1)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	doc, err := store.Open("wars.txt")
	require.NoError(t, err)
	assert.Equal(t, "Star Wars", doc.Contents())

	res, err = app.Test(uploadRequest(t, "big.txt", strings.Repeat("x", 100)), -1)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/download?path=wars.txt", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Star Wars", string(raw))
	assert.Contains(t, res.Header.Get("Content-Disposition"), `filename="wars.txt"`)

	status, resp := doJSON(t, app, http.MethodGet, "/api/documents/download", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "File path required", resp.Error)
}
