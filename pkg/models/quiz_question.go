package models

import (
	"time"

	"github.com/uptrace/bun"
)

type QuizQuestion struct {
	bun.BaseModel `bun:"table:quiz_questions,alias:qq"`

	ID                    int       `bun:",pk,nullzero" json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	ProjectID             int       `bun:",nullzero" json:"project_id"`
	QuestionOrder         int       `json:"question_order"`
	Question              string    `bun:",nullzero" json:"question"`
	CorrectAnswer         string    `bun:",nullzero" json:"correct_answer"`
	WrongAnswer1          *string   `bun:"wrong_answer_1" json:"wrong_answer_1"`
	WrongAnswer2          *string   `bun:"wrong_answer_2" json:"wrong_answer_2"`
	WrongAnswer3          *string   `bun:"wrong_answer_3" json:"wrong_answer_3"`
	QuestionAudioURL      *string   `json:"question_audio_url"`
	CorrectAnswerAudioURL *string   `json:"correct_answer_audio_url"`
	WrongAnswer1AudioURL  *string   `bun:"wrong_answer_1_audio_url" json:"wrong_answer_1_audio_url"`
	WrongAnswer2AudioURL  *string   `bun:"wrong_answer_2_audio_url" json:"wrong_answer_2_audio_url"`
	WrongAnswer3AudioURL  *string   `bun:"wrong_answer_3_audio_url" json:"wrong_answer_3_audio_url"`
}
