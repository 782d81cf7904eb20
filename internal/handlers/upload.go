package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Create returns a presigned URL the client PUTs the file body to. The
// returned storage id is then attached to a message.
func (h *UploadHandler) Create(c *gin.Context) {
	target, err := h.uploadService.GenerateUploadURL(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, target)
}

func (h *UploadHandler) Get(c *gin.Context) {
	storageID := c.Param("storageId")
	u, err := h.uploadService.FileURL(c.Request.Context(), middleware.CallerID(c), storageID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FileURLResponse{StorageID: storageID, URL: u})
}
