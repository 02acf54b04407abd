package spotify

import "time"

type MarkLivePayload struct {
	EpisodeURL *string `json:"episode_url,omitempty" validate:"omitempty,httpurl"`
}

type PublishResponse struct {
	Success           bool    `json:"success"`
	PublicationID     int     `json:"publication_id"`
	GUID              string  `json:"guid"`
	Status            string  `json:"status"`
	EstimatedLiveTime string  `json:"estimated_live_time"`
	AudioURL          string  `json:"audio_url"`
	Duration          float64 `json:"duration"`
	FileSize          int64   `json:"file_size"`
}

type StatusResponse struct {
	HasPublication   bool       `json:"has_publication"`
	Status           string     `json:"status"`
	EpisodeURL       *string    `json:"episode_url"`
	PublishedAt      *time.Time `json:"published_at"`
	SpotifyLiveAt    *time.Time `json:"spotify_live_at"`
	ErrorMessage     *string    `json:"error_message"`
	CompiledAudioURL *string    `json:"compiled_audio_url"`
	Duration         *float64   `json:"duration"`
}

const statusNotPublished = "not_published"
