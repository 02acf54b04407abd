package projects

import (
	"net/http"
	"strconv"

	"github.com/kindlewood/studio/pkg/auth"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	projectService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListProjectsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	projects, total, err := h.projectService.ListOwnedProjects(ctx, principal, ListProjectsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{
		"projects": projects,
		"total":    total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Project")
	}

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	project, err := h.projectService.RetrieveOwnedProject(ctx, principal, id)
	if err != nil {
		return errors.WithStack(err)
	}

	project.Scenes, err = h.projectService.ListScenes(ctx, project.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, project))
}
