package disco

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/google/uuid"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/models"
	"github.com/nkiryanov/discoteca/internal/repository"
)

const DefaultImageMaxBytes int64 = 5 << 20

// Image content types accepted as cover and extensions they are stored with
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ImageStore interface {
	// Store image under the key and return URL it is served from
	PutImage(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type DiscoService struct {
	repo          repository.DiscoRepo
	images        ImageStore
	imageMaxBytes int64
}

// Images may be nil, then image upload is disabled
func NewService(repo repository.DiscoRepo, images ImageStore, imageMaxBytes int64) *DiscoService {
	if imageMaxBytes <= 0 {
		imageMaxBytes = DefaultImageMaxBytes
	}

	return &DiscoService{
		repo:          repo,
		images:        images,
		imageMaxBytes: imageMaxBytes,
	}
}

func (s *DiscoService) ImageMaxBytes() int64 {
	return s.imageMaxBytes
}

func (s *DiscoService) ImagesEnabled() bool {
	return s.images != nil
}

func (s *DiscoService) List(ctx context.Context) ([]models.Disco, error) {
	return s.repo.ListDiscos(ctx)
}

func (s *DiscoService) Get(ctx context.Context, id int64) (models.Disco, error) {
	return s.repo.GetDisco(ctx, id)
}

// Create disco. Returns apperrors.ErrUserNotFound if owner not exists
func (s *DiscoService) Create(ctx context.Context, d models.Disco) (models.Disco, error) {
	return s.repo.CreateDisco(ctx, d)
}

func (s *DiscoService) Replace(ctx context.Context, d models.Disco) (models.Disco, error) {
	return s.repo.ReplaceDisco(ctx, d)
}

// Update only fields set in patch
// Returns apperrors.ErrNothingToUpdate if patch is empty
func (s *DiscoService) Patch(ctx context.Context, id int64, patch models.DiscoPatch) (models.Disco, error) {
	if patch.IsEmpty() {
		return models.Disco{}, apperrors.ErrNothingToUpdate
	}

	return s.repo.PatchDisco(ctx, id, patch)
}

func (s *DiscoService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteDisco(ctx, id)
}

// Store cover image and point disco url_imagem to it
//
// Errors:
//   - apperrors.ErrImageStorageDisabled if no image store configured
//   - apperrors.ErrImageInvalid if content type not allowed or size out of bounds
//   - apperrors.ErrDiscoNotFound if disco not exists
func (s *DiscoService) UploadImage(ctx context.Context, id int64, body io.Reader, size int64, contentType string) (models.Disco, error) {
	if s.images == nil {
		return models.Disco{}, apperrors.ErrImageStorageDisabled
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return models.Disco{}, fmt.Errorf("%w: content type %q not allowed", apperrors.ErrImageInvalid, contentType)
	}
	if size <= 0 || size > s.imageMaxBytes {
		return models.Disco{}, fmt.Errorf("%w: size %d out of bounds", apperrors.ErrImageInvalid, size)
	}

	// Fail before upload if there is nothing to attach image to
	if _, err := s.repo.GetDisco(ctx, id); err != nil {
		return models.Disco{}, err
	}

	key := path.Join("discos", strconv.FormatInt(id, 10), uuid.NewString()+ext)
	url, err := s.images.PutImage(ctx, key, body, size, contentType)
	if err != nil {
		return models.Disco{}, fmt.Errorf("can't store image. Err: %w", err)
	}

	return s.repo.PatchDisco(ctx, id, models.DiscoPatch{ImageURL: &url})
}
