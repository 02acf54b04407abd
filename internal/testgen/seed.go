package testgen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kindlewood/studio/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of every seeded user.
const TestPassword = "correct horse battery staple"

// StoryOptions configures a seeded story. Scene and question numbers are
// 1-based.
type StoryOptions struct {
	Title  string
	Scenes int // defaults to 3

	ScenesWithoutImages  []int
	ScenesWithoutAudio   []int
	ScenesWithDuplicates []int // scenes that get a second narrated audio page
	NoCoverAudio         bool

	QuizQuestions           int
	NoTransitionAudio       bool
	QuestionsWithoutAudio   []int
	QuestionsWithDuplicates []int // questions that get a second audio page

	// AudioURL builds narration URLs. pageType is one of the models audio
	// page types and n the scene number or question order (0 for cover and
	// transition).
	AudioURL func(pageType string, n int) string
}

// Story is everything CreateStory inserted.
type Story struct {
	Project       *models.Project
	Scenes        []*models.Scene
	QuizQuestions []*models.QuizQuestion
	AudioPages    []*models.AudioPage
}

func contains(ns []int, n int) bool {
	for _, v := range ns {
		if v == n {
			return true
		}
	}
	return false
}

func mustInsert(t *testing.T, db bun.IDB, model interface{}) {
	t.Helper()
	if _, err := db.NewInsert().Model(model).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert %T: %v", model, err)
	}
}

// CreateUser inserts a user whose password is TestPassword.
func CreateUser(t *testing.T, db bun.IDB, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  email,
	}
	mustInsert(t, db, user)
	return user
}

func CreateChildProfile(t *testing.T, db bun.IDB, userID int, name string) *models.ChildProfile {
	t.Helper()
	now := time.Now().UTC()
	child := &models.ChildProfile{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
		Name:      name,
	}
	mustInsert(t, db, child)
	return child
}

func defaultAudioURL(pageType string, n int) string {
	return fmt.Sprintf("https://cdn.example.com/audio/%s-%d.mp3", pageType, n)
}

// CreateStory inserts a project owned by userID with scenes, images, audio
// pages and quiz questions shaped by opts.
func CreateStory(t *testing.T, db bun.IDB, userID int, opts StoryOptions) *Story {
	t.Helper()

	if opts.Scenes <= 0 {
		opts.Scenes = 3
	}
	if opts.Title == "" {
		opts.Title = "The Brave Little Kite"
	}
	if opts.AudioURL == nil {
		opts.AudioURL = defaultAudioURL
	}

	now := time.Now().UTC()
	description := "A kite learns to fly in a storm."
	story := &Story{
		Project: &models.Project{
			CreatedAt:   now,
			UpdatedAt:   now,
			UserID:      userID,
			Title:       opts.Title,
			Description: &description,
		},
	}
	mustInsert(t, db, story.Project)

	addAudio := func(page *models.AudioPage) {
		page.CreatedAt = now
		page.UpdatedAt = now
		page.ProjectID = story.Project.ID
		page.PageNumber = len(story.AudioPages) + 1
		mustInsert(t, db, page)
		story.AudioPages = append(story.AudioPages, page)
	}
	narration := func(pageType string, n int) *string {
		u := opts.AudioURL(pageType, n)
		return &u
	}

	cover := &models.AudioPage{PageType: models.AudioPageTypeCover}
	if !opts.NoCoverAudio {
		cover.AudioURL = narration(models.AudioPageTypeCover, 0)
	}
	addAudio(cover)

	for n := 1; n <= opts.Scenes; n++ {
		caption := fmt.Sprintf("Scene %d caption", n)
		scene := &models.Scene{
			CreatedAt:   now,
			UpdatedAt:   now,
			ProjectID:   story.Project.ID,
			SceneNumber: n,
			Caption:     &caption,
		}
		mustInsert(t, db, scene)
		story.Scenes = append(story.Scenes, scene)

		if !contains(opts.ScenesWithoutImages, n) {
			mustInsert(t, db, &models.GeneratedImage{
				CreatedAt: now,
				SceneID:   scene.ID,
				ImageURL:  fmt.Sprintf("https://cdn.example.com/images/scene-%d.png", n),
			})
		}

		sceneID := scene.ID
		if !contains(opts.ScenesWithoutAudio, n) {
			addAudio(&models.AudioPage{
				PageType: models.AudioPageTypeScene,
				SceneID:  &sceneID,
				AudioURL: narration(models.AudioPageTypeScene, n),
			})
		}
		if contains(opts.ScenesWithDuplicates, n) {
			addAudio(&models.AudioPage{
				PageType: models.AudioPageTypeScene,
				SceneID:  &sceneID,
				AudioURL: narration(models.AudioPageTypeScene, n),
			})
		}
	}

	if opts.QuizQuestions > 0 {
		transition := &models.AudioPage{PageType: models.AudioPageTypeQuizTransition}
		if !opts.NoTransitionAudio {
			transition.AudioURL = narration(models.AudioPageTypeQuizTransition, 0)
		}
		addAudio(transition)
	}

	for n := 1; n <= opts.QuizQuestions; n++ {
		wrong := "A balloon"
		question := &models.QuizQuestion{
			CreatedAt:     now,
			UpdatedAt:     now,
			ProjectID:     story.Project.ID,
			QuestionOrder: n,
			Question:      fmt.Sprintf("Question %d?", n),
			CorrectAnswer: "A kite",
			WrongAnswer1:  &wrong,
		}
		mustInsert(t, db, question)
		story.QuizQuestions = append(story.QuizQuestions, question)

		if contains(opts.QuestionsWithoutAudio, n) {
			continue
		}
		questionID := question.ID
		addAudio(&models.AudioPage{
			PageType:       models.AudioPageTypeQuizQuestion,
			QuizQuestionID: &questionID,
			AudioURL:       narration(models.AudioPageTypeQuizQuestion, n),
		})
		if contains(opts.QuestionsWithDuplicates, n) {
			addAudio(&models.AudioPage{
				PageType:       models.AudioPageTypeQuizQuestion,
				QuizQuestionID: &questionID,
				AudioURL:       narration(models.AudioPageTypeQuizQuestion, n),
			})
		}
	}

	return story
}
