package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `bun:",nullzero" json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash
	DisplayName  string    `bun:",nullzero" json:"display_name"`
}

// Principal is the authenticated caller. It's resolved once by the auth
// middleware and handed to every service call that reads or writes owned
// rows.
type Principal struct {
	UserID int `json:"user_id"`
}
