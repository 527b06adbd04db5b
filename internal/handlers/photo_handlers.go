package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"
)

// PhotoFormField is the multipart field carrying the uploaded image.
const PhotoFormField = "photo"

// multipart headers and boundaries on top of the file itself
const uploadOverhead = 64 << 10

// PhotoHandler serves and stores client photos.
type PhotoHandler struct {
	photoService services.PhotoService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(ps services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: ps}
}

// UploadPhoto stores the multipart "photo" file as the client's photo.
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxPhotoSize+uploadOverhead)
	fileHeader, err := c.FormFile(PhotoFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusRequestEntityTooLarge, utils.ErrCodePayloadTooLarge, "Photo exceeds the 5 MiB limit.", err.Error()))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "A photo file is required in the '"+PhotoFormField+"' field.", err.Error()))
		return
	}
	if fileHeader.Size > services.MaxPhotoSize {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusRequestEntityTooLarge, utils.ErrCodePayloadTooLarge, "Photo exceeds the 5 MiB limit.", ""))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondInternalError(c, err, "Failed to read uploaded photo.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondInternalError(c, err, "Failed to read uploaded photo.")
		return
	}

	client, err := h.photoService.Store(c.Request.Context(), clientID, data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		utils.LogError(err, "UploadPhoto: Error from photoService.Store for client "+clientID.String())
		if errors.Is(err, services.ErrPayloadTooLarge) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusRequestEntityTooLarge, utils.ErrCodePayloadTooLarge, "Photo exceeds the 5 MiB limit.", err.Error()))
		} else if errors.Is(err, services.ErrUnsupportedMediaType) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnsupportedMediaType, utils.ErrCodeUnsupportedMediaType, "Only JPEG, PNG, GIF and AVIF images are accepted.", err.Error()))
		} else if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to store photo.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// GetPhoto writes inline photo bytes or redirects to the static uploads mount.
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	clientID, ok := parseIDParam(c, "client")
	if !ok {
		return
	}

	content, err := h.photoService.Serve(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else if errors.Is(err, services.ErrPhotoNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client has no photo.", err.Error()))
		} else {
			utils.RespondInternalError(c, err, "Failed to load photo.")
		}
		return
	}

	if !content.IsInline() {
		c.Redirect(http.StatusFound, "/"+content.Path)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, content.ContentType, content.Data)
}
