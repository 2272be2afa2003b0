package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/linht/docplug/document"
)

// SetDocuments enables the document routes and lets transforms name a stored
// document instead of sending its contents. Call before RegisterRoutes.
func (a *API) SetDocuments(store *document.Store) {
	a.documents = store
}

func (a *API) registerDocumentRoutes(app *fiber.App) {
	api := app.Group("/api/documents")

	api.Get("/list", a.listDocuments)
	api.Post("/upload", a.uploadDocument)
	api.Get("/download", a.downloadDocument)
}

// sendStoreError sends err with the status matching its kind
func sendStoreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return SendErrorMessage(c, 404, "Document not found")
	case errors.Is(err, document.ErrInvalidPath):
		return SendError(c, 400, err)
	case errors.Is(err, document.ErrTooLarge):
		return SendError(c, 413, err)
	default:
		return SendError(c, 500, err)
	}
}

// listDocuments handles GET /api/documents/list?path=dir
func (a *API) listDocuments(c *fiber.Ctx) error {
	listing, err := a.documents.List(c.Query("path"))
	if err != nil {
		return sendStoreError(c, err)
	}
	return SendSuccess(c, listing, "")
}

// uploadDocument handles POST /api/documents/upload
func (a *API) uploadDocument(c *fiber.Ctx) error {
	// Get uploaded file
	file, err := c.FormFile("file")
	if err != nil {
		return SendErrorMessage(c, 400, "No file provided")
	}

	if file.Size > a.documents.MaxSize() {
		return SendErrorMessage(c, 413, fmt.Sprintf("File too large (max %d bytes)", a.documents.MaxSize()))
	}

	src, err := file.Open()
	if err != nil {
		return SendError(c, 500, err)
	}
	defer src.Close()

	path, err := a.documents.Save(c.FormValue("path"), file.Filename, src)
	if err != nil {
		return sendStoreError(c, err)
	}

	return SendSuccess(c, fiber.Map{"path": path}, "File uploaded successfully")
}

// downloadDocument handles GET /api/documents/download?path=file
func (a *API) downloadDocument(c *fiber.Ctx) error {
	pathParam := c.Query("path")
	if pathParam == "" {
		return SendErrorMessage(c, 400, "File path required")
	}

	filePath, err := a.documents.Path(pathParam)
	if err != nil {
		return sendStoreError(c, err)
	}

	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filePath)))
	return c.SendFile(filePath)
}
