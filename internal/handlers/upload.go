package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/listado/internal/config"
)

// UploadHandler stores product images on local disk and serves back their
// public URLs.
type UploadHandler struct {
	cfg *config.Config
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(cfg *config.Config) *UploadHandler {
	return &UploadHandler{cfg: cfg}
}

// UploadImage accepts a multipart image and returns its URL.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
		return fiber.NewError(fiber.StatusBadRequest, "only .jpg, .jpeg, .png and .webp files are allowed")
	}

	dir := filepath.Join(h.cfg.UploadDir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not save file")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"url": h.cfg.UploadBaseURL + "/products/" + filename,
		},
	})
}

// DeleteImage removes a previously uploaded image by URL.
func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rel, ok := strings.CutPrefix(req.URL, h.cfg.UploadBaseURL+"/")
	if !ok || strings.Contains(rel, "..") {
		return fiber.NewError(fiber.StatusBadRequest, "url does not reference an uploaded file")
	}

	if err := os.Remove(filepath.Join(h.cfg.UploadDir, rel)); err != nil {
		if os.IsNotExist(err) {
			return fiber.NewError(fiber.StatusNotFound, "file not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
