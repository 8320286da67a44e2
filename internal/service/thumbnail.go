package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/thumbdeck/account-server-go/internal/database"
	apperrors "github.com/thumbdeck/account-server-go/internal/errors"
	"github.com/thumbdeck/account-server-go/internal/model"
	"github.com/thumbdeck/account-server-go/internal/repository"
)

const thumbnailSubdir = "thumbnail"

// TxRunner runs a function inside a database transaction. *database.DB
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// ThumbnailService manages user-owned thumbnail records and the image files
// behind them. Records live in the database; files live under the upload
// directory and are served statically.
type ThumbnailService struct {
	db        TxRunner
	repo      repository.ThumbnailRepository
	uploadDir string
}

func NewThumbnailService(db TxRunner, repo repository.ThumbnailRepository, uploadDir string) *ThumbnailService {
	return &ThumbnailService{
		db:        db,
		repo:      repo,
		uploadDir: uploadDir,
	}
}

type CreateThumbnailInput struct {
	UserID    string
	VideoName string
	Version   *string
	Paid      bool
	Filename  string
	File      io.Reader
}

// Create streams the uploaded image to disk and persists the record. The
// stored filename is prefixed with a millisecond timestamp so repeated
// uploads of the same file never collide.
func (s *ThumbnailService) Create(ctx context.Context, input CreateThumbnailInput) (*model.Thumbnail, error) {
	if input.VideoName == "" {
		return nil, apperrors.MissingRequired("videoName")
	}
	if input.Filename == "" || input.File == nil {
		return nil, apperrors.ValidationError("No file uploaded")
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(input.Filename))
	dir := filepath.Join(s.uploadDir, thumbnailSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Internal("Failed to store uploaded file").WithCause(err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, apperrors.Internal("Failed to store uploaded file").WithCause(err)
	}
	if _, err := io.Copy(dst, input.File); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return nil, apperrors.Internal("Failed to store uploaded file").WithCause(err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return nil, apperrors.Internal("Failed to store uploaded file").WithCause(err)
	}

	thumbnail, err := s.repo.Create(ctx, model.CreateThumbnailParams{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		VideoName: input.VideoName,
		Version:   input.Version,
		Image:     fmt.Sprintf("/uploads/%s/%s", thumbnailSubdir, filename),
		Paid:      input.Paid,
	})
	if err != nil {
		os.Remove(dst.Name())
		return nil, apperrors.Database(err)
	}

	log.Info().Str("thumbnailId", thumbnail.ID).Str("userId", input.UserID).Msg("thumbnail created")

	return thumbnail, nil
}

func (s *ThumbnailService) List(ctx context.Context, userID string) ([]model.Thumbnail, error) {
	thumbnails, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return thumbnails, nil
}

func (s *ThumbnailService) Get(ctx context.Context, id, userID string) (*model.Thumbnail, error) {
	thumbnail, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if thumbnail == nil {
		return nil, apperrors.NotFound("Thumbnail")
	}
	return thumbnail, nil
}

func (s *ThumbnailService) Update(ctx context.Context, id, userID string, params model.UpdateThumbnailParams) (*model.Thumbnail, error) {
	thumbnail, err := s.repo.Update(ctx, id, userID, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if thumbnail == nil {
		return nil, apperrors.NotFound("Thumbnail")
	}
	return thumbnail, nil
}

// Delete removes the record and then the backing file. File removal is
// best-effort: a missing file does not fail the delete.
func (s *ThumbnailService) Delete(ctx context.Context, id, userID string) error {
	thumbnail, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return apperrors.Database(err)
	}
	if thumbnail == nil {
		return apperrors.NotFound("Thumbnail")
	}

	s.removeFile(thumbnail.Image)

	log.Info().Str("thumbnailId", id).Str("userId", userID).Msg("thumbnail deleted")

	return nil
}

// DeleteAll removes every record owned by the user in one transaction, then
// cleans up the files.
func (s *ThumbnailService) DeleteAll(ctx context.Context, userID string) error {
	var deleted []model.Thumbnail

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.repo.WithTx(tx).DeleteAllByUserID(ctx, userID)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return apperrors.Database(err)
	}
	if len(deleted) == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "No thumbnails found")
	}

	for _, thumbnail := range deleted {
		s.removeFile(thumbnail.Image)
	}

	log.Info().Int("count", len(deleted)).Str("userId", userID).Msg("all thumbnails deleted")

	return nil
}

func (s *ThumbnailService) removeFile(image string) {
	path := filepath.Join(s.uploadDir, thumbnailSubdir, filepath.Base(image))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove thumbnail file")
	}
}
