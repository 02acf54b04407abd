package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		statements := []string{
			`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				display_name TEXT
			)`,
			`CREATE UNIQUE INDEX ux_users_email ON users (email COLLATE NOCASE)`,
			`
			CREATE TABLE child_profiles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				name TEXT NOT NULL,
				avatar_url TEXT
			)`,
			`CREATE INDEX ix_child_profiles_user_id ON child_profiles (user_id)`,
			`
			CREATE TABLE projects (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				title TEXT NOT NULL,
				description TEXT,
				cover_image_url TEXT,
				reading_level INTEGER,
				tone TEXT
			)`,
			`CREATE INDEX ix_projects_user_id ON projects (user_id)`,
			`
			CREATE TABLE scenes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				project_id INTEGER REFERENCES projects (id) ON DELETE CASCADE NOT NULL,
				scene_number INTEGER NOT NULL,
				description TEXT,
				caption TEXT,
				caption_chinese TEXT
			)`,
			`CREATE UNIQUE INDEX ux_scenes_project_number ON scenes (project_id, scene_number)`,
			`
			CREATE TABLE generated_images (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				scene_id INTEGER REFERENCES scenes (id) ON DELETE CASCADE NOT NULL,
				image_url TEXT NOT NULL
			)`,
			`CREATE INDEX ix_generated_images_scene_id ON generated_images (scene_id)`,
			`
			CREATE TABLE quiz_questions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				project_id INTEGER REFERENCES projects (id) ON DELETE CASCADE NOT NULL,
				question_order INTEGER NOT NULL,
				question TEXT NOT NULL,
				correct_answer TEXT NOT NULL,
				wrong_answer_1 TEXT,
				wrong_answer_2 TEXT,
				wrong_answer_3 TEXT,
				question_audio_url TEXT,
				correct_answer_audio_url TEXT,
				wrong_answer_1_audio_url TEXT,
				wrong_answer_2_audio_url TEXT,
				wrong_answer_3_audio_url TEXT
			)`,
			`CREATE INDEX ix_quiz_questions_project_id ON quiz_questions (project_id, question_order)`,
			`
			CREATE TABLE audio_pages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				project_id INTEGER REFERENCES projects (id) ON DELETE CASCADE NOT NULL,
				page_type TEXT NOT NULL CHECK (page_type IN ('cover', 'scene', 'quiz_transition', 'quiz_question')),
				page_number INTEGER NOT NULL,
				scene_id INTEGER REFERENCES scenes (id) ON DELETE CASCADE,
				quiz_question_id INTEGER REFERENCES quiz_questions (id) ON DELETE CASCADE,
				text_content TEXT,
				audio_url TEXT,
				audio_duration_seconds REAL
			)`,
			`CREATE INDEX ix_audio_pages_project_id ON audio_pages (project_id, page_type)`,
		}

		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{"audio_pages", "quiz_questions", "generated_images", "scenes", "projects", "child_profiles", "users"}
		for _, table := range tables {
			if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
