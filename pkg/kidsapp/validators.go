package kidsapp

import "github.com/kindlewood/studio/pkg/models"

type PublishPayload struct {
	ChildProfileIDs []int   `json:"child_profile_ids" validate:"required,min=1,dive,min=1"`
	Category        *string `json:"category,omitempty" validate:"omitempty,max=64"`
}

type PublishResponse struct {
	Success           bool                `json:"success"`
	Publication       *models.Publication `json:"publication"`
	Targets           []*Target           `json:"targets"`
	PublishedTo       []string            `json:"published_to"`
	HasQuiz           bool                `json:"has_quiz"`
	QuizQuestionCount int                 `json:"quiz_question_count"`
	Message           string              `json:"message"`
}
