package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        int       `bun:",nullzero" json:"user_id"`
	Title         string    `bun:",nullzero" json:"title"`
	Description   *string   `json:"description"`
	CoverImageURL *string   `json:"cover_image_url"`
	ReadingLevel  *int      `json:"reading_level"`
	Tone          *string   `json:"tone"`

	Scenes []*Scene `bun:"rel:has-many,join:id=project_id" json:"scenes,omitempty"`
}

type Scene struct {
	bun.BaseModel `bun:"table:scenes,alias:s"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ProjectID      int       `bun:",nullzero" json:"project_id"`
	SceneNumber    int       `json:"scene_number"`
	Description    *string   `json:"description"`
	Caption        *string   `json:"caption"`
	CaptionChinese *string   `json:"caption_chinese"`

	Images []*GeneratedImage `bun:"rel:has-many,join:id=scene_id" json:"images,omitempty"`
}

type GeneratedImage struct {
	bun.BaseModel `bun:"table:generated_images,alias:gi"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SceneID   int       `bun:",nullzero" json:"scene_id"`
	ImageURL  string    `bun:",nullzero" json:"image_url"`
}
