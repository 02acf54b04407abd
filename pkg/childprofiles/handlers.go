package childprofiles

import (
	"net/http"

	"github.com/kindlewood/studio/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	childProfileService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	profiles, err := h.childProfileService.ListChildProfiles(ctx, principal)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{"child_profiles": profiles}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateChildProfilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	profile, err := h.childProfileService.CreateChildProfile(ctx, principal, CreateChildProfileOptions{
		Name:      params.Name,
		AvatarURL: params.AvatarURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, profile))
}
