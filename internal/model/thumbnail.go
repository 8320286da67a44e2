package model

import (
	"time"
)

// Thumbnail is a user-owned media record pointing at an uploaded image file.
type Thumbnail struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	VideoName string    `db:"video_name" json:"videoName"`
	Version   *string   `db:"version" json:"version,omitempty"`
	Image     string    `db:"image" json:"image"`
	Paid      bool      `db:"paid" json:"paid"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateThumbnailParams struct {
	ID        string
	UserID    string
	VideoName string
	Version   *string
	Image     string
	Paid      bool
}

type UpdateThumbnailParams struct {
	VideoName *string
	Version   *string
	Paid      *bool
}
