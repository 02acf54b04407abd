package readiness

import (
	"context"

	"github.com/kindlewood/studio/pkg/models"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service checks whether a project has every asset publishing needs. It's
// read-only and never caches; assets can be deleted between two publishes.
type Service struct {
	projectService *projects.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{projects.NewService(db)}
}

// CheckPublishReadiness verifies ownership and builds the readiness report.
// An incomplete project is not an error here; call Report.Err to gate on it.
func (svc *Service) CheckPublishReadiness(ctx context.Context, principal models.Principal, projectID int) (*Report, error) {
	if _, err := svc.projectService.RetrieveOwnedProject(ctx, principal, projectID); err != nil {
		return nil, errors.WithStack(err)
	}
	return svc.check(ctx, projectID)
}

func (svc *Service) check(ctx context.Context, projectID int) (*Report, error) {
	scenes, err := svc.projectService.ListScenes(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	pages, err := svc.projectService.ListAudioPages(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	questions, err := svc.projectService.ListQuizQuestions(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sceneAudio := map[int]int{}
	questionAudio := map[int]int{}
	transitions := 0
	for _, p := range pages {
		if !p.HasAudio() {
			continue
		}
		switch p.PageType {
		case models.AudioPageTypeScene:
			if p.SceneID != nil {
				sceneAudio[*p.SceneID]++
			}
		case models.AudioPageTypeQuizQuestion:
			if p.QuizQuestionID != nil {
				questionAudio[*p.QuizQuestionID]++
			}
		case models.AudioPageTypeQuizTransition:
			transitions++
		}
	}

	report := &Report{
		ScenesWithoutImages:      []int{},
		ScenesWithoutAudio:       []int{},
		ScenesWithDuplicateAudio: []int{},
	}
	for _, s := range scenes {
		if len(s.Images) == 0 {
			report.ScenesWithoutImages = append(report.ScenesWithoutImages, s.SceneNumber)
		}
		switch n := sceneAudio[s.ID]; {
		case n == 0:
			report.ScenesWithoutAudio = append(report.ScenesWithoutAudio, s.SceneNumber)
		case n > 1:
			report.ScenesWithDuplicateAudio = append(report.ScenesWithDuplicateAudio, s.SceneNumber)
		}
	}

	if len(questions) > 0 {
		quiz := &QuizAudioMissing{
			Transition:          transitions == 0,
			DuplicateTransition: transitions > 1,
			Questions:           []int{},
			DuplicateQuestions:  []int{},
		}
		for _, q := range questions {
			switch n := questionAudio[q.ID]; {
			case n == 0:
				quiz.Questions = append(quiz.Questions, q.QuestionOrder)
			case n > 1:
				quiz.DuplicateQuestions = append(quiz.DuplicateQuestions, q.QuestionOrder)
			}
		}
		report.QuizAudioMissing = quiz
	}

	report.finalize()
	return report, nil
}

// AudioCoverage counts the narration the audiobook needs: the cover plus one
// segment per scene.
func (svc *Service) AudioCoverage(ctx context.Context, projectID int) (has, required int, err error) {
	scenes, err := svc.projectService.ListScenes(ctx, projectID)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	pages, err := svc.projectService.ListAudioPages(ctx, projectID, models.AudioPageTypeCover, models.AudioPageTypeScene)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}

	cover := false
	narrated := map[int]bool{}
	for _, p := range pages {
		if !p.HasAudio() {
			continue
		}
		if p.PageType == models.AudioPageTypeCover {
			cover = true
		} else if p.SceneID != nil {
			narrated[*p.SceneID] = true
		}
	}

	required = len(scenes) + 1
	if cover {
		has++
	}
	for _, s := range scenes {
		if narrated[s.ID] {
			has++
		}
	}
	return has, required, nil
}
