package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AudioPageTypeCover          = "cover"
	AudioPageTypeScene          = "scene"
	AudioPageTypeQuizTransition = "quiz_transition"
	AudioPageTypeQuizQuestion   = "quiz_question"
)

// AudioPage is the narration for one page of a story. Exactly one of
// SceneID/QuizQuestionID is set for scene and quiz question pages; cover and
// quiz transition pages have neither.
type AudioPage struct {
	bun.BaseModel `bun:"table:audio_pages,alias:ap"`

	ID                   int       `bun:",pk,nullzero" json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	ProjectID            int       `bun:",nullzero" json:"project_id"`
	PageType             string    `bun:",nullzero" json:"page_type"`
	PageNumber           int       `json:"page_number"`
	SceneID              *int      `json:"scene_id"`
	QuizQuestionID       *int      `json:"quiz_question_id"`
	TextContent          *string   `json:"text_content"`
	AudioURL             *string   `json:"audio_url"`
	AudioDurationSeconds *float64  `json:"audio_duration_seconds"`
}

// HasAudio reports whether the page has a usable narration URL.
func (ap *AudioPage) HasAudio() bool {
	return ap.AudioURL != nil && *ap.AudioURL != ""
}
