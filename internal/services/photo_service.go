package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"gym_crm_backend/internal/config"
	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/storage"
	"gym_crm_backend/pkg/utils"
)

// MaxPhotoSize is the largest accepted photo upload (5 MiB).
const MaxPhotoSize = 5 << 20

// PhotoURLPrefix is prepended to stored keys to form the client's photo path,
// which is also the static route the files are served from.
const PhotoURLPrefix = "uploads/"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("photo exceeds the 5 MiB limit")
	ErrPhotoNotFound        = errors.New("client has no photo")
)

var allowedPhotoExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".avif": true,
}

var allowedPhotoMIMETypes = map[string]bool{
	"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true, "image/avif": true,
}

var sniffedPhotoTypes = []string{"image/jpeg", "image/png", "image/gif", "image/avif"}

// PhotoContent is what Serve hands to the transport layer. Inline photos carry
// the decoded bytes; disk photos carry only the relative path.
type PhotoContent struct {
	Data        []byte
	ContentType string
	Path        string
}

// IsInline reports whether Data holds the photo bytes.
func (p *PhotoContent) IsInline() bool {
	return p.Path == ""
}

type PhotoService interface {
	Store(ctx context.Context, clientID uuid.UUID, data []byte, mimeType, filename string) (*models.Client, error)
	Serve(ctx context.Context, clientID uuid.UUID) (*PhotoContent, error)
	RemovePhotoFile(ctx context.Context, photo *models.ClientPhoto)
}

type photoService struct {
	clientRepo repositories.ClientRepository
	files      storage.ObjectStore
	mode       config.PhotoStorageMode
	db         *sql.DB
	now        func() time.Time
}

// NewPhotoService creates a new instance of PhotoService. files is only used in disk mode.
func NewPhotoService(repo repositories.ClientRepository, files storage.ObjectStore, mode config.PhotoStorageMode, db *sql.DB, clock func() time.Time) PhotoService {
	if clock == nil {
		clock = time.Now
	}
	return &photoService{clientRepo: repo, files: files, mode: mode, db: db, now: clock}
}

// validatePhoto checks the extension, the declared MIME type and the sniffed
// content. All three must name an allowed image type.
func validatePhoto(data []byte, mimeType, filename string) (string, error) {
	if len(data) > MaxPhotoSize {
		return "", ErrPayloadTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExtensions[ext] {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedMediaType, ext)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if !allowedPhotoMIMETypes[declared] {
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedMediaType, mimeType)
	}

	detected := mimetype.Detect(data)
	for _, allowed := range sniffedPhotoTypes {
		if detected.Is(allowed) {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: content looks like %s", ErrUnsupportedMediaType, detected.String())
}

func (s *photoService) Store(ctx context.Context, clientID uuid.UUID, data []byte, mimeType, filename string) (*models.Client, error) {
	ext, err := validatePhoto(data, mimeType, filename)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client for photo upload: %w", err)
	}

	if s.mode == config.PhotoStorageInline {
		return s.storeInline(ctx, client, data, mimeType)
	}
	return s.storeOnDisk(ctx, client, data, mimeType, ext)
}

func (s *photoService) storeInline(ctx context.Context, client *models.Client, data []byte, mimeType string) (*models.Client, error) {
	uploadedAt := s.now().UTC()
	photo := &models.ClientPhoto{
		Data:        base64.StdEncoding.EncodeToString(data),
		ContentType: mimeType,
		UploadedAt:  &uploadedAt,
	}
	if err := s.clientRepo.UpdateClientPhoto(ctx, s.db, client.ID, photo); err != nil {
		return nil, s.photoPersistError(err)
	}
	client.Photo = photo
	return client, nil
}

// storeOnDisk writes the new file, persists its path, then drops the old file.
// If persisting fails the new file is removed and the old photo stays in place.
func (s *photoService) storeOnDisk(ctx context.Context, client *models.Client, data []byte, mimeType, ext string) (*models.Client, error) {
	key := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + uuid.NewString() + ext
	if err := s.files.Put(ctx, key, data, mimeType); err != nil {
		return nil, fmt.Errorf("failed to write photo file: %w", err)
	}

	previous := client.Photo
	photo := &models.ClientPhoto{Path: PhotoURLPrefix + key}
	if err := s.clientRepo.UpdateClientPhoto(ctx, s.db, client.ID, photo); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			utils.LogWarn(delErr, "Failed to remove orphaned photo file", map[string]interface{}{"key": key})
		}
		return nil, s.photoPersistError(err)
	}
	client.Photo = photo

	if previous != nil && !previous.IsInline() {
		s.RemovePhotoFile(ctx, previous)
	}
	return client, nil
}

func (s *photoService) photoPersistError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrClientNotFound
	}
	return fmt.Errorf("failed to save client photo: %w", err)
}

// RemovePhotoFile deletes the file behind a disk-mode photo. Failures are logged only.
func (s *photoService) RemovePhotoFile(ctx context.Context, photo *models.ClientPhoto) {
	if s.files == nil || photo.IsEmpty() || photo.IsInline() {
		return
	}
	key := path.Base(strings.TrimPrefix(photo.Path, PhotoURLPrefix))
	if err := s.files.Delete(ctx, key); err != nil {
		utils.LogWarn(err, "Failed to delete previous photo file", map[string]interface{}{"path": photo.Path})
	}
}

func (s *photoService) Serve(ctx context.Context, clientID uuid.UUID) (*PhotoContent, error) {
	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client for photo: %w", err)
	}
	if client.Photo.IsEmpty() {
		return nil, ErrPhotoNotFound
	}

	if !client.Photo.IsInline() {
		return &PhotoContent{Path: client.Photo.Path}, nil
	}

	data, err := base64.StdEncoding.DecodeString(client.Photo.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored photo: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrPhotoNotFound
	}
	contentType := client.Photo.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return &PhotoContent{Data: data, ContentType: contentType}, nil
}
