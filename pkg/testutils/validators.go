package testutils

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name"`
}

type createUserResponse struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
}

type sceneRequest struct {
	Caption  string  `json:"caption"`
	ImageURL *string `json:"image_url"`
	AudioURL *string `json:"audio_url"`
}

type quizQuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	WrongAnswers  []string `json:"wrong_answers" validate:"max=3"`
	AudioURL      *string  `json:"audio_url"`
}

// createProjectRequest describes a finished story. Scenes are numbered in
// the order given.
type createProjectRequest struct {
	UserID                 int                   `json:"user_id" validate:"required,min=1"`
	Title                  string                `json:"title" validate:"required"`
	Description            *string               `json:"description"`
	CoverImageURL          *string               `json:"cover_image_url"`
	CoverAudioURL          *string               `json:"cover_audio_url"`
	Scenes                 []sceneRequest        `json:"scenes" validate:"dive"`
	QuizTransitionAudioURL *string               `json:"quiz_transition_audio_url"`
	QuizQuestions          []quizQuestionRequest `json:"quiz_questions" validate:"dive"`
}

type createProjectResponse struct {
	ID int `json:"id"`
}

type deleteAllResponse struct {
	Deleted int `json:"deleted"`
}
