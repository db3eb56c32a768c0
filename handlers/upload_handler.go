package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"xposure-ticketing/services"
)

// maxUploadBytes caps event cover uploads at 10 MB.
const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploader services.MediaUploader
}

func NewUploadHandler(uploader services.MediaUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload stores an event cover image and returns its public URL.
func (h *UploadHandler) Upload(c echo.Context) error {
	if h.uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "image uploads are not configured",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request().Context(), file)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
