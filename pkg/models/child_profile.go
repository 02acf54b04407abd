package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ChildProfile struct {
	bun.BaseModel `bun:"table:child_profiles,alias:cp"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	Name      string    `bun:",nullzero" json:"name"`
	AvatarURL *string   `json:"avatar_url"`
}
