package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thumbdeck/account-server-go/internal/database"
	apperrors "github.com/thumbdeck/account-server-go/internal/errors"
	"github.com/thumbdeck/account-server-go/internal/model"
	"github.com/thumbdeck/account-server-go/internal/repository"
)

type mockThumbnailRepo struct {
	mock.Mock
}

func (m *mockThumbnailRepo) FindByID(ctx context.Context, id, userID string) (*model.Thumbnail, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Thumbnail), args.Error(1)
}

func (m *mockThumbnailRepo) FindByUserID(ctx context.Context, userID string) ([]model.Thumbnail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Thumbnail), args.Error(1)
}

func (m *mockThumbnailRepo) Create(ctx context.Context, params model.CreateThumbnailParams) (*model.Thumbnail, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Thumbnail), args.Error(1)
}

func (m *mockThumbnailRepo) Update(ctx context.Context, id, userID string, params model.UpdateThumbnailParams) (*model.Thumbnail, error) {
	args := m.Called(ctx, id, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Thumbnail), args.Error(1)
}

func (m *mockThumbnailRepo) Delete(ctx context.Context, id, userID string) (*model.Thumbnail, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Thumbnail), args.Error(1)
}

func (m *mockThumbnailRepo) DeleteAllByUserID(ctx context.Context, userID string) ([]model.Thumbnail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Thumbnail), args.Error(1)
}

func (m *mockThumbnailRepo) WithTx(tx *sqlx.Tx) repository.ThumbnailRepository {
	return m
}

// fakeTxRunner runs the transaction function directly, without a database.
type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

func TestThumbnailCreate(t *testing.T) {
	t.Run("stores the file and persists the record", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, dir)

		var captured model.CreateThumbnailParams
		repo.On("Create", mock.Anything, mock.AnythingOfType("model.CreateThumbnailParams")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(model.CreateThumbnailParams)
			}).
			Return(&model.Thumbnail{ID: "thumb-1", UserID: "user-1"}, nil)

		thumbnail, err := svc.Create(context.Background(), CreateThumbnailInput{
			UserID:    "user-1",
			VideoName: "intro",
			Paid:      true,
			Filename:  "cover.png",
			File:      strings.NewReader("png-bytes"),
		})
		require.NoError(t, err)
		assert.Equal(t, "thumb-1", thumbnail.ID)

		assert.Equal(t, "user-1", captured.UserID)
		assert.Equal(t, "intro", captured.VideoName)
		assert.True(t, captured.Paid)
		assert.True(t, strings.HasPrefix(captured.Image, "/uploads/thumbnail/"))
		assert.True(t, strings.HasSuffix(captured.Image, "-cover.png"))

		data, err := os.ReadFile(filepath.Join(dir, "thumbnail", filepath.Base(captured.Image)))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("requires a video name", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		_, err := svc.Create(context.Background(), CreateThumbnailInput{
			UserID:   "user-1",
			Filename: "cover.png",
			File:     strings.NewReader("png-bytes"),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("requires a file", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		_, err := svc.Create(context.Background(), CreateThumbnailInput{
			UserID:    "user-1",
			VideoName: "intro",
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("removes the file when the insert fails", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, dir)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))

		_, err := svc.Create(context.Background(), CreateThumbnailInput{
			UserID:    "user-1",
			VideoName: "intro",
			Filename:  "cover.png",
			File:      strings.NewReader("png-bytes"),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))

		entries, err := os.ReadDir(filepath.Join(dir, "thumbnail"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestThumbnailGet(t *testing.T) {
	t.Run("returns the owned record", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		repo.On("FindByID", mock.Anything, "thumb-1", "user-1").
			Return(&model.Thumbnail{ID: "thumb-1", UserID: "user-1"}, nil)

		thumbnail, err := svc.Get(context.Background(), "thumb-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "thumb-1", thumbnail.ID)
	})

	t.Run("missing or foreign record is not found", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		repo.On("FindByID", mock.Anything, "thumb-1", "user-2").Return(nil, nil)

		_, err := svc.Get(context.Background(), "thumb-1", "user-2")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestThumbnailUpdate(t *testing.T) {
	t.Run("applies partial updates", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		videoName := "renamed"
		params := model.UpdateThumbnailParams{VideoName: &videoName}
		repo.On("Update", mock.Anything, "thumb-1", "user-1", params).
			Return(&model.Thumbnail{ID: "thumb-1", VideoName: "renamed"}, nil)

		thumbnail, err := svc.Update(context.Background(), "thumb-1", "user-1", params)
		require.NoError(t, err)
		assert.Equal(t, "renamed", thumbnail.VideoName)
	})

	t.Run("missing record is not found", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		repo.On("Update", mock.Anything, "thumb-9", "user-1", mock.Anything).Return(nil, nil)

		_, err := svc.Update(context.Background(), "thumb-9", "user-1", model.UpdateThumbnailParams{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestThumbnailDelete(t *testing.T) {
	t.Run("removes the record and the backing file", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, dir)

		require.NoError(t, os.MkdirAll(filepath.Join(dir, "thumbnail"), 0o755))
		path := filepath.Join(dir, "thumbnail", "123-cover.png")
		require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

		repo.On("Delete", mock.Anything, "thumb-1", "user-1").
			Return(&model.Thumbnail{ID: "thumb-1", Image: "/uploads/thumbnail/123-cover.png"}, nil)

		require.NoError(t, svc.Delete(context.Background(), "thumb-1", "user-1"))
		assert.NoFileExists(t, path)
	})

	t.Run("missing record is not found", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		repo.On("Delete", mock.Anything, "thumb-9", "user-1").Return(nil, nil)

		err := svc.Delete(context.Background(), "thumb-9", "user-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("missing file does not fail the delete", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		repo.On("Delete", mock.Anything, "thumb-1", "user-1").
			Return(&model.Thumbnail{ID: "thumb-1", Image: "/uploads/thumbnail/gone.png"}, nil)

		assert.NoError(t, svc.Delete(context.Background(), "thumb-1", "user-1"))
	})
}

func TestThumbnailDeleteAll(t *testing.T) {
	t.Run("removes every record and file for the user", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, dir)

		require.NoError(t, os.MkdirAll(filepath.Join(dir, "thumbnail"), 0o755))
		pathA := filepath.Join(dir, "thumbnail", "1-a.png")
		pathB := filepath.Join(dir, "thumbnail", "2-b.png")
		require.NoError(t, os.WriteFile(pathA, []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(pathB, []byte("b"), 0o644))

		repo.On("DeleteAllByUserID", mock.Anything, "user-1").Return([]model.Thumbnail{
			{ID: "thumb-1", Image: "/uploads/thumbnail/1-a.png"},
			{ID: "thumb-2", Image: "/uploads/thumbnail/2-b.png"},
		}, nil)

		require.NoError(t, svc.DeleteAll(context.Background(), "user-1"))
		assert.NoFileExists(t, pathA)
		assert.NoFileExists(t, pathB)
	})

	t.Run("no records is not found", func(t *testing.T) {
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{}, repo, t.TempDir())

		repo.On("DeleteAllByUserID", mock.Anything, "user-1").Return([]model.Thumbnail{}, nil)

		err := svc.DeleteAll(context.Background(), "user-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("transaction failure keeps the files", func(t *testing.T) {
		dir := t.TempDir()
		repo := new(mockThumbnailRepo)
		svc := NewThumbnailService(&fakeTxRunner{err: errors.New("tx failed")}, repo, dir)

		require.NoError(t, os.MkdirAll(filepath.Join(dir, "thumbnail"), 0o755))
		path := filepath.Join(dir, "thumbnail", "1-a.png")
		require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

		err := svc.DeleteAll(context.Background(), "user-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
		assert.FileExists(t, path)
	})
}
