package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/thumbdeck/account-server-go/internal/model"
)

// ThumbnailRepository scopes every lookup and mutation to the owning user.
// A record belonging to someone else is indistinguishable from a missing one.
type ThumbnailRepository interface {
	FindByID(ctx context.Context, id, userID string) (*model.Thumbnail, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Thumbnail, error)
	Create(ctx context.Context, params model.CreateThumbnailParams) (*model.Thumbnail, error)
	Update(ctx context.Context, id, userID string, params model.UpdateThumbnailParams) (*model.Thumbnail, error)
	// Delete removes the record and returns the deleted row so the caller can
	// remove the backing file.
	Delete(ctx context.Context, id, userID string) (*model.Thumbnail, error)
	// DeleteAllByUserID removes every record owned by the user, returning the
	// deleted rows for file cleanup.
	DeleteAllByUserID(ctx context.Context, userID string) ([]model.Thumbnail, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) ThumbnailRepository
}

type thumbnailRepo struct {
	db sqlxDB
}

func NewThumbnailRepository(db *sqlx.DB) ThumbnailRepository {
	return &thumbnailRepo{db: db}
}

func (r *thumbnailRepo) WithTx(tx *sqlx.Tx) ThumbnailRepository {
	return &thumbnailRepo{db: tx}
}

func (r *thumbnailRepo) FindByID(ctx context.Context, id, userID string) (*model.Thumbnail, error) {
	var thumbnail model.Thumbnail
	err := r.db.GetContext(ctx, &thumbnail, `
		SELECT * FROM thumbnails WHERE id = $1 AND user_id = $2
	`, id, userID)
	return HandleNotFound(&thumbnail, err)
}

func (r *thumbnailRepo) FindByUserID(ctx context.Context, userID string) ([]model.Thumbnail, error) {
	var thumbnails []model.Thumbnail
	err := r.db.SelectContext(ctx, &thumbnails, `
		SELECT * FROM thumbnails
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return thumbnails, nil
}

func (r *thumbnailRepo) Create(ctx context.Context, params model.CreateThumbnailParams) (*model.Thumbnail, error) {
	var thumbnail model.Thumbnail
	err := r.db.GetContext(ctx, &thumbnail, `
		INSERT INTO thumbnails (id, user_id, video_name, version, image, paid)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.UserID, params.VideoName, params.Version, params.Image, params.Paid)
	if err != nil {
		return nil, err
	}
	return &thumbnail, nil
}

func (r *thumbnailRepo) Update(ctx context.Context, id, userID string, params model.UpdateThumbnailParams) (*model.Thumbnail, error) {
	var thumbnail model.Thumbnail
	err := r.db.GetContext(ctx, &thumbnail, `
		UPDATE thumbnails SET
			video_name = COALESCE($3, video_name),
			version = COALESCE($4, version),
			paid = COALESCE($5, paid),
			updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID, params.VideoName, params.Version, params.Paid, time.Now())
	return HandleNotFound(&thumbnail, err)
}

func (r *thumbnailRepo) Delete(ctx context.Context, id, userID string) (*model.Thumbnail, error) {
	var thumbnail model.Thumbnail
	err := r.db.GetContext(ctx, &thumbnail, `
		DELETE FROM thumbnails WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID)
	return HandleNotFound(&thumbnail, err)
}

func (r *thumbnailRepo) DeleteAllByUserID(ctx context.Context, userID string) ([]model.Thumbnail, error) {
	var thumbnails []model.Thumbnail
	err := r.db.SelectContext(ctx, &thumbnails, `
		DELETE FROM thumbnails WHERE user_id = $1
		RETURNING *
	`, userID)
	if err != nil {
		return nil, err
	}
	return thumbnails, nil
}
