package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code       string                 `json:"code"`
		Message    string                 `json:"message"`
		StatusCode int                    `json:"status_code"`
		Details    map[string]interface{} `json:"details"`
	} `json:"error"`
}

func handle(t *testing.T, err error) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	NewHandler().Handle(err, c)

	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr, body
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("custom errors keep their status and code through wrapping", func(t *testing.T) {
		rr, body := handle(t, errors.WithStack(NotFound("Project")))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not_found", body.Error.Code)
		assert.Equal(t, "Project not found.", body.Error.Message)
		assert.Nil(t, body.Error.Details)
	})

	t.Run("details are rendered when present", func(t *testing.T) {
		report := map[string]interface{}{"missing_scenes": []int{2, 3}}
		rr, body := handle(t, IncompleteContent("Story is incomplete.", report))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "incomplete_content", body.Error.Code)
		assert.Contains(t, body.Error.Details, "missing_scenes")
	})

	t.Run("echo errors are converted", func(t *testing.T) {
		rr, body := handle(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		assert.Equal(t, "method_not_allowed", body.Error.Code)
	})

	t.Run("generic errors become internal server errors", func(t *testing.T) {
		rr, body := handle(t, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "internal_server_error", body.Error.Code)
		assert.Equal(t, "Internal Server Error", body.Error.Message)
	})

	t.Run("compilation failures keep their message", func(t *testing.T) {
		rr, body := handle(t, CompilationFailed("Audio compilation failed."))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "compilation_failed", body.Error.Code)
		assert.Equal(t, "Audio compilation failed.", body.Error.Message)
	})
}

func TestErrorIs(t *testing.T) {
	t.Parallel()
	err := errors.Wrap(Conflict("Publication changed."), "retry")
	assert.True(t, errors.Is(err, Conflict("Publication changed.")))
	assert.False(t, errors.Is(err, NotFound("Publication")))
}

func TestHTTPCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusConflict, HTTPCode(errors.WithStack(Conflict("In progress."))))
	assert.Equal(t, http.StatusNotFound, HTTPCode(NotFound("Project")))
	assert.Equal(t, http.StatusInternalServerError, HTTPCode(errors.New("boom")))
}
