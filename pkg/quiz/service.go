package quiz

import (
	"context"

	"github.com/kindlewood/studio/pkg/models"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/uptrace/bun"
)

type Answer struct {
	Text      string  `json:"text"`
	AudioURL  *string `json:"audio_url"`
	IsCorrect bool    `json:"is_correct"`
}

type Question struct {
	ID               int      `json:"id"`
	QuestionOrder    int      `json:"question_order"`
	Question         string   `json:"question"`
	QuestionAudioURL *string  `json:"question_audio_url"`
	Answers          []Answer `json:"answers"`
}

type Quiz struct {
	ProjectID          int        `json:"project_id"`
	Title              string     `json:"title"`
	TransitionAudioURL *string    `json:"transition_audio_url"`
	Questions          []Question `json:"questions"`
}

type Service struct {
	projectService *projects.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{projectService: projects.NewService(db)}
}

// answers lists the correct answer first, then whichever wrong answers are
// set. Clients shuffle.
func answers(q *models.QuizQuestion) []Answer {
	out := []Answer{{Text: q.CorrectAnswer, AudioURL: q.CorrectAnswerAudioURL, IsCorrect: true}}
	wrong := []struct {
		text  *string
		audio *string
	}{
		{q.WrongAnswer1, q.WrongAnswer1AudioURL},
		{q.WrongAnswer2, q.WrongAnswer2AudioURL},
		{q.WrongAnswer3, q.WrongAnswer3AudioURL},
	}
	for _, w := range wrong {
		if w.text == nil || *w.text == "" {
			continue
		}
		out = append(out, Answer{Text: *w.text, AudioURL: w.audio})
	}
	return out
}

func (svc *Service) RetrieveQuiz(ctx context.Context, projectID int) (*Quiz, error) {
	project, err := svc.projectService.RetrieveProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	questions, err := svc.projectService.ListQuizQuestions(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	quiz := &Quiz{
		ProjectID: project.ID,
		Title:     project.Title,
		Questions: make([]Question, 0, len(questions)),
	}

	// Question narration lives on the quiz audio pages; the column on the
	// question is the fallback.
	questionAudio := map[int]*string{}
	if len(questions) > 0 {
		pages, err := svc.projectService.ListAudioPages(ctx, project.ID, models.AudioPageTypeQuizTransition, models.AudioPageTypeQuizQuestion)
		if err != nil {
			return nil, err
		}
		for _, p := range pages {
			if !p.HasAudio() {
				continue
			}
			switch {
			case p.PageType == models.AudioPageTypeQuizTransition && quiz.TransitionAudioURL == nil:
				quiz.TransitionAudioURL = p.AudioURL
			case p.PageType == models.AudioPageTypeQuizQuestion && p.QuizQuestionID != nil:
				if _, ok := questionAudio[*p.QuizQuestionID]; !ok {
					questionAudio[*p.QuizQuestionID] = p.AudioURL
				}
			}
		}
	}

	for _, q := range questions {
		audio, ok := questionAudio[q.ID]
		if !ok {
			audio = q.QuestionAudioURL
		}
		quiz.Questions = append(quiz.Questions, Question{
			ID:               q.ID,
			QuestionOrder:    q.QuestionOrder,
			Question:         q.Question,
			QuestionAudioURL: audio,
			Answers:          answers(q),
		})
	}
	return quiz, nil
}
