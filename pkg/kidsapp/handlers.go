package kidsapp

import (
	"net/http"
	"strconv"

	"github.com/kindlewood/studio/pkg/auth"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/metrics"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	kidsAppService *Service
}

func projectID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Project")
	}
	return id, nil
}

func (h *handler) publish(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := projectID(c)
	if err != nil {
		return err
	}

	params := PublishPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.kidsAppService.Publish(ctx, principal, id, PublishOptions{
		ChildProfileIDs: params.ChildProfileIDs,
		Category:        params.Category,
	})
	metrics.PublishAttempt(models.PlatformKindlewoodApp, metrics.Outcome(err))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, PublishResponse{
		Success:           true,
		Publication:       result.Publication,
		Targets:           result.Targets,
		PublishedTo:       result.PublishedTo,
		HasQuiz:           result.HasQuiz,
		QuizQuestionCount: result.QuizQuestionCount,
		Message:           publishedMessage(result.Publication.Title, result.PublishedTo),
	}))
}

func (h *handler) status(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := projectID(c)
	if err != nil {
		return err
	}

	status, err := h.kidsAppService.Status(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, status))
}

func (h *handler) unpublish(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := projectID(c)
	if err != nil {
		return err
	}

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	pub, err := h.kidsAppService.Unpublish(ctx, principal, id)
	if err != nil {
		return errors.WithStack(err)
	}
	metrics.Unpublished(models.PlatformKindlewoodApp)

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"publication": pub,
	}))
}
