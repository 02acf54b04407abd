package spotify

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
	spotifyService    *Service
	estimatedLiveTime string
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

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.spotifyService.Publish(ctx, principal, id)
	metrics.PublishAttempt(models.PlatformSpotify, metrics.Outcome(err))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, PublishResponse{
		Success:           true,
		PublicationID:     result.Publication.ID,
		GUID:              result.Publication.GUID,
		Status:            result.Publication.Status,
		EstimatedLiveTime: h.estimatedLiveTime,
		AudioURL:          result.Compilation.CompiledAudioURL,
		Duration:          result.Compilation.Duration.Seconds(),
		FileSize:          result.Compilation.FileSize,
	}))
}

func (h *handler) status(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := projectID(c)
	if err != nil {
		return err
	}

	pub, err := h.spotifyService.Status(ctx, id)
	if err != nil {
		if errcodes.HTTPCode(err) == http.StatusNotFound {
			return errors.WithStack(c.JSON(http.StatusOK, StatusResponse{Status: statusNotPublished}))
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, StatusResponse{
		HasPublication:   true,
		Status:           pub.Status,
		EpisodeURL:       pub.ExternalURL,
		PublishedAt:      pub.PublishedAt,
		SpotifyLiveAt:    pub.LiveAt,
		ErrorMessage:     pub.ErrorMessage,
		CompiledAudioURL: pub.CompiledAudioURL,
		Duration:         pub.CompiledAudioDurationSeconds,
	}))
}

func (h *handler) markLive(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := projectID(c)
	if err != nil {
		return err
	}

	params := MarkLivePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}

	pub, err := h.spotifyService.MarkLive(ctx, principal, id, params.EpisodeURL)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"publication": pub,
	}))
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

	pub, err := h.spotifyService.Unpublish(ctx, principal, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"publication": pub,
	}))
}

func (h *handler) feed(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.spotifyService.Feed(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Blob(http.StatusOK, feedContentType, data))
}
