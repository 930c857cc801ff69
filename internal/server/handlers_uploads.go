package server

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blogflow/backend/internal/storage"
)

// UploadImage godoc
// @Summary Upload a post image
// @Description Stores the image in the object store and returns the retrieval URI to use as image_url
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} map[string]interface{} "Retrieval URI"
// @Failure 400 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Failure 503 {object} simpleResponse
// @Router /uploads [post]
func (s *Server) UploadImage(c echo.Context) error {
	if s.Storage == nil {
		return c.JSON(http.StatusServiceUnavailable, simpleResponse{Success: false, Message: "Object storage is not configured."})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Image file is required."})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Unable to read uploaded file."})
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := storage.ObjectKey(fileHeader.Filename, time.Now().UTC())

	// Coarse server-side progress trace, one line per quarter.
	lastQuarter := 0
	progress := func(fraction float64) {
		quarter := int(fraction * 4)
		if quarter > lastQuarter {
			lastQuarter = quarter
			log.Printf("upload %s: %d%%", objectKey, quarter*25)
		}
	}

	uri, err := s.Storage.UploadFile(c.Request().Context(), objectKey, file, fileHeader.Size, contentType, progress)
	if err != nil {
		log.Printf("image upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to upload image. Please try again."})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"image_url": uri,
	})
}
