package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"
)

func newPhotoEngine(svc services.PhotoService) *gin.Engine {
	r := gin.New()
	h := NewPhotoHandler(svc)
	r.POST("/clients/:id/photo", h.UploadPhoto)
	r.GET("/clients/:id/photo", h.GetPhoto)
	return r
}

// multipartPhoto builds a body with one file part under field.
func multipartPhoto(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestPhotoHandler_UploadPhoto(t *testing.T) {
	id := uuid.New()
	data := []byte("\x89PNG\r\n\x1a\nrest")

	t.Run("stored", func(t *testing.T) {
		svc := new(MockPhotoService)
		svc.On("Store", mock.Anything, id, data, "image/png", "face.png").
			Return(&models.Client{ID: id, Photo: &models.ClientPhoto{Path: "uploads/1-x.png"}}, nil)

		body, ct := multipartPhoto(t, PhotoFormField, "face.png", "image/png", data)
		w := perform(newPhotoEngine(svc), http.MethodPost, "/clients/"+id.String()+"/photo", body, ct)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"photo":"uploads/1-x.png"`)
		svc.AssertExpectations(t)
	})

	t.Run("missing field", func(t *testing.T) {
		svc := new(MockPhotoService)
		body, ct := multipartPhoto(t, "avatar", "face.png", "image/png", data)
		w := perform(newPhotoEngine(svc), http.MethodPost, "/clients/"+id.String()+"/photo", body, ct)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"too large", services.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, utils.ErrCodePayloadTooLarge},
		{"unsupported", services.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, utils.ErrCodeUnsupportedMediaType},
		{"no client", services.ErrClientNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
		{"storage failure", errors.New("disk full"), http.StatusInternalServerError, utils.ErrCodeInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPhotoService)
			svc.On("Store", mock.Anything, id, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			body, ct := multipartPhoto(t, PhotoFormField, "face.png", "image/png", data)
			w := perform(newPhotoEngine(svc), http.MethodPost, "/clients/"+id.String()+"/photo", body, ct)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(w))
		})
	}
}

func TestPhotoHandler_GetPhoto(t *testing.T) {
	id := uuid.New()

	t.Run("inline bytes are cached forever", func(t *testing.T) {
		svc := new(MockPhotoService)
		svc.On("Serve", mock.Anything, id).Return(&services.PhotoContent{Data: []byte("GIF89a"), ContentType: "image/gif"}, nil)

		w := perform(newPhotoEngine(svc), http.MethodGet, "/clients/"+id.String()+"/photo", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
		assert.Equal(t, "GIF89a", w.Body.String())
	})

	t.Run("disk photo redirects to the static mount", func(t *testing.T) {
		svc := new(MockPhotoService)
		svc.On("Serve", mock.Anything, id).Return(&services.PhotoContent{Path: "uploads/1-x.png"}, nil)

		w := perform(newPhotoEngine(svc), http.MethodGet, "/clients/"+id.String()+"/photo", nil, "")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/uploads/1-x.png", w.Header().Get("Location"))
	})

	t.Run("no photo", func(t *testing.T) {
		svc := new(MockPhotoService)
		svc.On("Serve", mock.Anything, id).Return(nil, services.ErrPhotoNotFound)

		w := perform(newPhotoEngine(svc), http.MethodGet, "/clients/"+id.String()+"/photo", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
