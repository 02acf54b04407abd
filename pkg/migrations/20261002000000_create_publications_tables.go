package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE publications (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				project_id INTEGER REFERENCES projects (id) ON DELETE RESTRICT NOT NULL,
				platform TEXT NOT NULL CHECK (platform IN ('spotify', 'kindlewood_app')),
				guid TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('compiling', 'published', 'live', 'failed', 'unpublished')),
				category TEXT,
				title TEXT NOT NULL,
				description TEXT,
				cover_image_url TEXT,
				compiled_audio_url TEXT,
				compiled_audio_duration_seconds REAL,
				compiled_audio_file_size INTEGER,
				error_message TEXT,
				external_url TEXT,
				publish_requested_at TIMESTAMPTZ,
				compiled_at TIMESTAMPTZ,
				published_at TIMESTAMPTZ,
				live_at TIMESTAMPTZ,
				unpublished_at TIMESTAMPTZ
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		// The upsert key for both publish paths, and the row-level guard that
		// keeps two first-time publishes from creating two rows.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_publications_project_platform ON publications (project_id, platform)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_publications_status ON publications (platform, status)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE publication_targets (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				publication_id INTEGER REFERENCES publications (id) ON DELETE CASCADE NOT NULL,
				target_type TEXT NOT NULL CHECK (target_type IN ('child_profile')),
				target_id INTEGER NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				added_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				removed_at TIMESTAMPTZ
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE UNIQUE INDEX ux_publication_targets ON publication_targets (publication_id, target_type, target_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_publication_targets_target ON publication_targets (target_type, target_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS publication_targets`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP TABLE IF EXISTS publications`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
