package testutils

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/kindlewood/studio/pkg/auth"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db          *bun.DB
	authService *auth.Service
}

// createUser registers an account and returns a token for it.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	params := createUserRequest{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Register(ctx, params.Email, params.Password, params.DisplayName)
	if err != nil {
		return errors.WithStack(err)
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, createUserResponse{
		ID:    user.ID,
		Token: token,
	}))
}

// createProject inserts a finished story with its narration and quiz.
// POST /test/projects.
func (h *handler) createProject(c echo.Context) error {
	ctx := c.Request().Context()

	params := createProjectRequest{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	var projectID int
	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		id, err := seedProject(ctx, tx, params)
		projectID = id
		return err
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, createProjectResponse{ID: projectID}))
}

func seedProject(ctx context.Context, tx bun.Tx, params createProjectRequest) (int, error) {
	now := time.Now().UTC()

	project := &models.Project{
		CreatedAt:     now,
		UpdatedAt:     now,
		UserID:        params.UserID,
		Title:         params.Title,
		Description:   params.Description,
		CoverImageURL: params.CoverImageURL,
	}
	if _, err := tx.NewInsert().Model(project).Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to create project")
	}

	pageNumber := 0
	addPage := func(page *models.AudioPage) error {
		pageNumber++
		page.CreatedAt = now
		page.UpdatedAt = now
		page.ProjectID = project.ID
		page.PageNumber = pageNumber
		_, err := tx.NewInsert().Model(page).Exec(ctx)
		return errors.Wrapf(err, "failed to create %s audio page", page.PageType)
	}

	if err := addPage(&models.AudioPage{PageType: models.AudioPageTypeCover, AudioURL: params.CoverAudioURL}); err != nil {
		return 0, err
	}

	for i, s := range params.Scenes {
		caption := s.Caption
		scene := &models.Scene{
			CreatedAt:   now,
			UpdatedAt:   now,
			ProjectID:   project.ID,
			SceneNumber: i + 1,
			Caption:     &caption,
		}
		if _, err := tx.NewInsert().Model(scene).Exec(ctx); err != nil {
			return 0, errors.Wrap(err, "failed to create scene")
		}

		if s.ImageURL != nil {
			image := &models.GeneratedImage{CreatedAt: now, SceneID: scene.ID, ImageURL: *s.ImageURL}
			if _, err := tx.NewInsert().Model(image).Exec(ctx); err != nil {
				return 0, errors.Wrap(err, "failed to create scene image")
			}
		}

		sceneID := scene.ID
		if err := addPage(&models.AudioPage{PageType: models.AudioPageTypeScene, SceneID: &sceneID, AudioURL: s.AudioURL}); err != nil {
			return 0, err
		}
	}

	if len(params.QuizQuestions) == 0 {
		return project.ID, nil
	}

	if err := addPage(&models.AudioPage{PageType: models.AudioPageTypeQuizTransition, AudioURL: params.QuizTransitionAudioURL}); err != nil {
		return 0, err
	}

	for i, q := range params.QuizQuestions {
		question := &models.QuizQuestion{
			CreatedAt:     now,
			UpdatedAt:     now,
			ProjectID:     project.ID,
			QuestionOrder: i + 1,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
		}
		wrong := []**string{&question.WrongAnswer1, &question.WrongAnswer2, &question.WrongAnswer3}
		for j := range q.WrongAnswers {
			answer := q.WrongAnswers[j]
			*wrong[j] = &answer
		}
		if _, err := tx.NewInsert().Model(question).Exec(ctx); err != nil {
			return 0, errors.Wrap(err, "failed to create quiz question")
		}

		questionID := question.ID
		if err := addPage(&models.AudioPage{PageType: models.AudioPageTypeQuizQuestion, QuizQuestionID: &questionID, AudioURL: q.AudioURL}); err != nil {
			return 0, err
		}
	}

	return project.ID, nil
}

// Children first so foreign keys hold.
var seededModels = []interface{}{
	(*models.PublicationTarget)(nil),
	(*models.Publication)(nil),
	(*models.AudioPage)(nil),
	(*models.QuizQuestion)(nil),
	(*models.GeneratedImage)(nil),
	(*models.Scene)(nil),
	(*models.Project)(nil),
	(*models.ChildProfile)(nil),
	(*models.User)(nil),
}

// deleteAll empties every table between test runs.
// DELETE /test/data.
func (h *handler) deleteAll(c echo.Context) error {
	ctx := c.Request().Context()

	deleted := 0
	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range seededModels {
			res, err := tx.NewDelete().Model(model).Where("1=1").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			n, _ := res.RowsAffected()
			deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, deleteAllResponse{Deleted: deleted}))
}
