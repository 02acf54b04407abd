package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/kindlewood/studio/internal/testgen"
	"github.com/kindlewood/studio/pkg/binder"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setup(t *testing.T) (*echo.Echo, *bun.DB) {
	t.Helper()

	db := testgen.NewDB(t)
	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutes(e, db, "test-secret")
	return e, db
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestCreateUser(t *testing.T) {
	e, _ := setup(t)

	rr := serve(e, http.MethodPost, "/test/users", `{"email":"parent@example.com","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp createUserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.NotEmpty(t, resp.Token)

	rr = serve(e, http.MethodPost, "/test/users", `{"email":"parent@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreateProject(t *testing.T) {
	e, db := setup(t)
	ctx := context.Background()
	user := testgen.CreateUser(t, db, "parent@example.com")

	body := `{
		"user_id": ` + strconv.Itoa(user.ID) + `,
		"title": "The Brave Little Kite",
		"cover_audio_url": "https://cdn.example.com/cover.mp3",
		"scenes": [
			{"caption": "Windy day", "image_url": "https://cdn.example.com/1.png", "audio_url": "https://cdn.example.com/1.mp3"},
			{"caption": "Up high", "image_url": "https://cdn.example.com/2.png"}
		],
		"quiz_questions": [
			{"question": "What flew?", "correct_answer": "A kite", "wrong_answers": ["A boat", "A cat"]}
		]
	}`
	rr := serve(e, http.MethodPost, "/test/projects", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp createProjectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	var pages []*models.AudioPage
	require.NoError(t, db.NewSelect().Model(&pages).Where("project_id = ?", resp.ID).Order("page_number").Scan(ctx))
	types := make([]string, 0, len(pages))
	for _, p := range pages {
		types = append(types, p.PageType)
	}
	assert.Equal(t, []string{
		models.AudioPageTypeCover,
		models.AudioPageTypeScene,
		models.AudioPageTypeScene,
		models.AudioPageTypeQuizTransition,
		models.AudioPageTypeQuizQuestion,
	}, types)
	assert.True(t, pages[1].HasAudio())
	assert.False(t, pages[2].HasAudio())

	question := &models.QuizQuestion{}
	require.NoError(t, db.NewSelect().Model(question).Where("project_id = ?", resp.ID).Scan(ctx))
	require.NotNil(t, question.WrongAnswer2)
	assert.Equal(t, "A cat", *question.WrongAnswer2)
	assert.Nil(t, question.WrongAnswer3)

	images, err := db.NewSelect().Model((*models.GeneratedImage)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, images)
}

func TestCreateProject_Validation(t *testing.T) {
	e, _ := setup(t)

	rr := serve(e, http.MethodPost, "/test/projects", `{"title":"No owner"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDeleteAll(t *testing.T) {
	e, db := setup(t)
	ctx := context.Background()
	user := testgen.CreateUser(t, db, "parent@example.com")
	testgen.CreateChildProfile(t, db, user.ID, "Mia")
	testgen.CreateStory(t, db, user.ID, testgen.StoryOptions{Scenes: 2})

	rr := serve(e, http.MethodDelete, "/test/data", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp deleteAllResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Positive(t, resp.Deleted)

	users, err := db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, users)
}
