package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/lead-labeler/internal/dtos"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

const maxModelSize = 32 << 20

type ModelHandler struct {
	ModelService *services.ModelService
}

func NewModelHandler(m *services.ModelService) *ModelHandler {
	return &ModelHandler{ModelService: m}
}

// UploadModel is the POST /model_upload endpoint. The artifact comes in the
// multipart field "file" and is named after the file.
func (h *ModelHandler) UploadModel(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if fh.Size > maxModelSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "model file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload: " + err.Error()})
		return
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxModelSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload: " + err.Error()})
		return
	}

	m, err := h.ModelService.Upload(c.Request.Context(), fh.Filename, content)
	switch {
	case errors.Is(err, services.ErrModelExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Model name already exists, please use a different name"})
		return
	case errors.Is(err, services.ErrInvalidModel):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save model: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Model uploaded", "model_name": m.Name})
}

// DeleteModel is the DELETE /model_delete endpoint
func (h *ModelHandler) DeleteModel(c *gin.Context) {
	var req dtos.ModelDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	name := req.Model()
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model_name is required"})
		return
	}

	err := h.ModelService.Delete(c.Request.Context(), name)
	switch {
	case errors.Is(err, services.ErrModelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Model not found"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model deleted", "model_name": name})
}

// ListModels is the GET /models endpoint
func (h *ModelHandler) ListModels(c *gin.Context) {
	list, err := h.ModelService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list models: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}
