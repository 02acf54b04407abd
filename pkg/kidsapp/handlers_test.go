package kidsapp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kindlewood/studio/internal/testgen"
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/kindlewood/studio/pkg/binder"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testSecret = "test-secret"

type testServer struct {
	e    *echo.Echo
	db   *bun.DB
	auth *auth.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testgen.NewDB(t)
	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	authService := auth.NewService(db, testSecret)
	RegisterRoutesWithGroup(e.Group("/projects"), db, auth.NewMiddleware(authService))

	return &testServer{e: e, db: db, auth: authService}
}

func (ts *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := ts.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(method, path, payload, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.e.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func publishBody(ids ...int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return `{"child_profile_ids":[` + strings.Join(parts, ",") + `]}`
}

func publicationCount(t *testing.T, db *bun.DB) int {
	t.Helper()
	count, err := db.NewSelect().Model((*models.Publication)(nil)).Count(context.Background())
	require.NoError(t, err)
	return count
}

type incompleteBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			MissingScenes       []int `json:"missing_scenes"`
			ScenesWithoutImages []int `json:"scenes_without_images"`
			ScenesWithoutAudio  []int `json:"scenes_without_audio"`
			QuizAudioMissing    *struct {
				Transition bool  `json:"transition"`
				Questions  []int `json:"questions"`
			} `json:"quiz_audio_missing"`
		} `json:"details"`
	} `json:"error"`
}

func TestPublish_MissingSceneAudio(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	child := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{Scenes: 3, ScenesWithoutAudio: []int{3}})

	rr := ts.do(http.MethodPost, fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID), publishBody(child.ID), ts.token(t, user))
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	var body incompleteBody
	decode(t, rr, &body)
	assert.Equal(t, "incomplete_content", body.Error.Code)
	assert.Equal(t, []int{3}, body.Error.Details.MissingScenes)
	assert.Equal(t, []int{3}, body.Error.Details.ScenesWithoutAudio)
	assert.Empty(t, body.Error.Details.ScenesWithoutImages)
	assert.Contains(t, body.Error.Message, "scene 3 needs narration audio")

	assert.Zero(t, publicationCount(t, ts.db))
}

func TestPublish_Gate(t *testing.T) {
	tests := []struct {
		name    string
		opts    testgen.StoryOptions
		ok      bool
		missing []int
		quiz    []int
	}{
		{name: "complete", opts: testgen.StoryOptions{Scenes: 2}, ok: true},
		{name: "complete with quiz", opts: testgen.StoryOptions{Scenes: 2, QuizQuestions: 2}, ok: true},
		{name: "image missing", opts: testgen.StoryOptions{Scenes: 2, ScenesWithoutImages: []int{1}}, missing: []int{1}},
		{name: "duplicate narration", opts: testgen.StoryOptions{Scenes: 2, ScenesWithDuplicates: []int{2}}, missing: []int{2}},
		{name: "quiz question audio missing", opts: testgen.StoryOptions{Scenes: 1, QuizQuestions: 3, QuestionsWithoutAudio: []int{3}}, quiz: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)
			user := testgen.CreateUser(t, ts.db, "parent@example.com")
			child := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
			story := testgen.CreateStory(t, ts.db, user.ID, tt.opts)

			rr := ts.do(http.MethodPost, fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID), publishBody(child.ID), ts.token(t, user))
			if tt.ok {
				assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
				return
			}

			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			var body incompleteBody
			decode(t, rr, &body)
			if tt.missing != nil {
				assert.Equal(t, tt.missing, body.Error.Details.MissingScenes)
			}
			if tt.quiz != nil {
				require.NotNil(t, body.Error.Details.QuizAudioMissing)
				assert.Equal(t, tt.quiz, body.Error.Details.QuizAudioMissing.Questions)
			}
		})
	}
}

func TestPublish_Succeeds(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	emma := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
	liam := testgen.CreateChildProfile(t, ts.db, user.ID, "Liam")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{Scenes: 3})

	rr := ts.do(http.MethodPost, fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID),
		`{"child_profile_ids":[`+fmt.Sprint(emma.ID)+`,`+fmt.Sprint(liam.ID)+`],"category":"bedtime"}`, ts.token(t, user))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp PublishResponse
	decode(t, rr, &resp)
	assert.True(t, resp.Success)
	assert.False(t, resp.HasQuiz)
	assert.Zero(t, resp.QuizQuestionCount)
	assert.Equal(t, []string{"Emma", "Liam"}, resp.PublishedTo)
	assert.Equal(t, `"The Brave Little Kite" is now in the Kids App libraries of Emma and Liam.`, resp.Message)
	require.NotNil(t, resp.Publication)
	assert.Equal(t, models.PublicationStatusLive, resp.Publication.Status)
	assert.Equal(t, models.PlatformKindlewoodApp, resp.Publication.Platform)
	require.NotNil(t, resp.Publication.Category)
	assert.Equal(t, "bedtime", *resp.Publication.Category)
	require.Len(t, resp.Targets, 2)
	assert.Equal(t, "Emma", resp.Targets[0].Name)
	assert.Equal(t, "Liam", resp.Targets[1].Name)
}

func TestPublish_WithQuiz(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	child := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{Scenes: 2, QuizQuestions: 3})

	rr := ts.do(http.MethodPost, fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID), publishBody(child.ID), ts.token(t, user))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp PublishResponse
	decode(t, rr, &resp)
	assert.True(t, resp.HasQuiz)
	assert.Equal(t, 3, resp.QuizQuestionCount)
	assert.Equal(t, `"The Brave Little Kite" is now in Emma's Kids App library.`, resp.Message)
}

func TestPublish_ForeignChildProfile(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	other := testgen.CreateUser(t, ts.db, "other@example.com")
	mine := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
	theirs := testgen.CreateChildProfile(t, ts.db, other.ID, "Noah")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{})

	rr := ts.do(http.MethodPost, fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID), publishBody(mine.ID, theirs.ID), ts.token(t, user))
	assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Child profile not found.")
	assert.Zero(t, publicationCount(t, ts.db))
}

func TestPublish_Validation(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{})
	path := fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID)
	token := ts.token(t, user)

	rr := ts.do(http.MethodPost, path, `{"child_profile_ids":[]}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	rr = ts.do(http.MethodPost, path, `{"child_profile_ids":[1],"surprise":true}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	rr = ts.do(http.MethodPost, path, publishBody(1), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPublish_ReactivatesTargets(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	child := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{Scenes: 2})
	token := ts.token(t, user)
	path := fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID)

	rr := ts.do(http.MethodPost, path, publishBody(child.ID), token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var first PublishResponse
	decode(t, rr, &first)

	rr = ts.do(http.MethodDelete, path, "", token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(http.MethodPost, path, publishBody(child.ID), token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var second PublishResponse
	decode(t, rr, &second)
	assert.Equal(t, first.Publication.ID, second.Publication.ID)

	var targets []*models.PublicationTarget
	err := ts.db.NewSelect().Model(&targets).Where("pt.publication_id = ?", first.Publication.ID).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, child.ID, targets[0].TargetID)
	assert.True(t, targets[0].IsActive)
	assert.Nil(t, targets[0].RemovedAt)
}

func TestUnpublish_DeactivatesTargets(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	emma := testgen.CreateChildProfile(t, ts.db, user.ID, "Emma")
	liam := testgen.CreateChildProfile(t, ts.db, user.ID, "Liam")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{Scenes: 2})
	token := ts.token(t, user)
	path := fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID)

	rr := ts.do(http.MethodPost, path, publishBody(emma.ID, liam.ID), token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	t.Run("status lists named targets", func(t *testing.T) {
		rr := ts.do(http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var status Status
		decode(t, rr, &status)
		assert.True(t, status.IsPublished)
		require.NotNil(t, status.Publication)
		require.Len(t, status.Targets, 2)
		assert.Equal(t, "Emma", status.Targets[0].Name)
		assert.Equal(t, liam.ID, status.Targets[1].TargetID)
	})

	rr = ts.do(http.MethodDelete, path, "", token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var targets []*models.PublicationTarget
	err := ts.db.NewSelect().Model(&targets).Order("pt.id ASC").Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 2)
	for _, target := range targets {
		assert.False(t, target.IsActive)
		assert.NotNil(t, target.RemovedAt)
	}

	pub := &models.Publication{}
	require.NoError(t, ts.db.NewSelect().Model(pub).Scan(context.Background()))
	assert.Equal(t, models.PublicationStatusUnpublished, pub.Status)

	rr = ts.do(http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var status Status
	decode(t, rr, &status)
	assert.False(t, status.IsPublished)
	assert.Nil(t, status.Publication)
	assert.Empty(t, status.Targets)

	rr = ts.do(http.MethodDelete, path, "", token)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestStatus_NeverPublished(t *testing.T) {
	ts := setupTestServer(t)
	user := testgen.CreateUser(t, ts.db, "parent@example.com")
	story := testgen.CreateStory(t, ts.db, user.ID, testgen.StoryOptions{})

	rr := ts.do(http.MethodGet, fmt.Sprintf("/projects/%d/publish-kids-app", story.Project.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"is_published":false,"targets":[]}`, rr.Body.String())
}
