package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PlatformSpotify       = "spotify"
	PlatformKindlewoodApp = "kindlewood_app"
)

const (
	PublicationStatusCompiling   = "compiling"
	PublicationStatusPublished   = "published"
	PublicationStatusLive        = "live"
	PublicationStatusFailed      = "failed"
	PublicationStatusUnpublished = "unpublished"
)

const TargetTypeChildProfile = "child_profile"

// Publication is one project exposed on one platform. Rows are never
// deleted; unpublishing is a status change.
type Publication struct {
	bun.BaseModel `bun:"table:publications,alias:pub"`

	ID                           int        `bun:",pk,nullzero" json:"id"`
	CreatedAt                    time.Time  `json:"created_at"`
	UpdatedAt                    time.Time  `json:"updated_at"`
	ProjectID                    int        `bun:",nullzero" json:"project_id"`
	Platform                     string     `bun:",nullzero" json:"platform"`
	GUID                         string     `bun:"guid,nullzero" json:"guid"`
	Status                       string     `bun:",nullzero" json:"status"`
	Category                     *string    `json:"category"`
	Title                        string     `bun:",nullzero" json:"title"`
	Description                  *string    `json:"description"`
	CoverImageURL                *string    `json:"cover_image_url"`
	CompiledAudioURL             *string    `json:"compiled_audio_url"`
	CompiledAudioDurationSeconds *float64   `json:"compiled_audio_duration_seconds"`
	CompiledAudioFileSize        *int64     `json:"compiled_audio_file_size"`
	ErrorMessage                 *string    `json:"error_message"`
	ExternalURL                  *string    `json:"external_url"`
	PublishRequestedAt           *time.Time `json:"publish_requested_at"`
	CompiledAt                   *time.Time `json:"compiled_at"`
	PublishedAt                  *time.Time `json:"published_at"`
	LiveAt                       *time.Time `json:"live_at"`
	UnpublishedAt                *time.Time `json:"unpublished_at"`

	Targets []*PublicationTarget `bun:"rel:has-many,join:id=publication_id" json:"targets,omitempty"`
}

// IsPublic reports whether the publication is currently visible on its
// platform.
func (p *Publication) IsPublic() bool {
	return p.Status == PublicationStatusPublished || p.Status == PublicationStatusLive
}

// PublicationTarget is one recipient of a publication. A target only counts
// while IsActive is true.
type PublicationTarget struct {
	bun.BaseModel `bun:"table:publication_targets,alias:pt"`

	ID            int        `bun:",pk,nullzero" json:"id"`
	PublicationID int        `bun:",nullzero" json:"publication_id"`
	TargetType    string     `bun:",nullzero" json:"target_type"`
	TargetID      int        `json:"target_id"`
	IsActive      bool       `json:"is_active"`
	AddedAt       time.Time  `json:"added_at"`
	RemovedAt     *time.Time `json:"removed_at"`
}
