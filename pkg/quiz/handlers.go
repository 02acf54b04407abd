package quiz

import (
	"net/http"
	"strconv"

	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	quizService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Project")
	}

	quiz, err := h.quizService.RetrieveQuiz(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, quiz))
}

// preflight only runs for OPTIONS requests the CORS middleware didn't
// already answer.
func (h *handler) preflight(c echo.Context) error {
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
