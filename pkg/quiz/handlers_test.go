package quiz

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kindlewood/studio/internal/testgen"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestServer(t *testing.T) (*echo.Echo, *bun.DB) {
	t.Helper()

	db := testgen.NewDB(t)
	e := echo.New()
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutesWithGroup(e.Group("/projects"), db)
	return e, db
}

func TestRetrieveQuiz(t *testing.T) {
	e, db := setupTestServer(t)
	user := testgen.CreateUser(t, db, "parent@example.com")
	story := testgen.CreateStory(t, db, user.ID, testgen.StoryOptions{Scenes: 1, QuizQuestions: 2, QuestionsWithoutAudio: []int{2}})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/projects/%d/quiz", story.Project.ID), nil)
	req.Header.Set(echo.HeaderOrigin, "https://kids.kindlewood.app")
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get(echo.HeaderAccessControlAllowOrigin))

	var quiz Quiz
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quiz))
	assert.Equal(t, story.Project.ID, quiz.ProjectID)
	assert.NotNil(t, quiz.TransitionAudioURL)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, 1, quiz.Questions[0].QuestionOrder)
	assert.Equal(t, 2, quiz.Questions[1].QuestionOrder)
	assert.NotNil(t, quiz.Questions[0].QuestionAudioURL)
	assert.Nil(t, quiz.Questions[1].QuestionAudioURL)

	require.NotEmpty(t, quiz.Questions[0].Answers)
	assert.True(t, quiz.Questions[0].Answers[0].IsCorrect)
	for _, a := range quiz.Questions[0].Answers[1:] {
		assert.False(t, a.IsCorrect)
	}
}

func TestRetrieveQuiz_NoQuiz(t *testing.T) {
	e, db := setupTestServer(t)
	user := testgen.CreateUser(t, db, "parent@example.com")
	story := testgen.CreateStory(t, db, user.ID, testgen.StoryOptions{})

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/projects/%d/quiz", story.Project.ID), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var quiz Quiz
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quiz))
	assert.Empty(t, quiz.Questions)
	assert.Nil(t, quiz.TransitionAudioURL)
}

func TestRetrieveQuiz_UnknownProject(t *testing.T) {
	e, _ := setupTestServer(t)

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects/999/quiz", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuizPreflight(t *testing.T) {
	e, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/projects/1/quiz", nil)
	req.Header.Set(echo.HeaderOrigin, "https://kids.kindlewood.app")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rr.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodGet)
}
