package main

import (
	"os"
	"strings"

	"github.com/kindlewood/studio/pkg/config"
	"github.com/kindlewood/studio/pkg/database"
	"github.com/kindlewood/studio/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:     "migrations",
		Usage:    "manage the studio database schema",
		Commands: commands(db, log),
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func commands(db *bun.DB, log logger.Logger) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init",
			Usage: "create migration tables",
			Action: func(c *cli.Context) error {
				return errors.WithStack(migrations.NewMigrator(db).Init(c.Context))
			},
		},
		{
			Name:  "migrate",
			Usage: "apply pending migrations",
			Action: func(c *cli.Context) error {
				group, err := migrations.BringUpToDate(c.Context, db)
				if err != nil {
					return err
				}
				logGroup(log, "migrated", group)
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "roll back the last migration group",
			Action: func(c *cli.Context) error {
				group, err := migrations.Rollback(c.Context, db)
				if err != nil {
					return err
				}
				logGroup(log, "rolled back", group)
				return nil
			},
		},
		{
			Name:      "create",
			Usage:     "create a Go migration",
			ArgsUsage: "<name words...>",
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return errors.New("a migration name is required")
				}
				name := strings.Join(c.Args().Slice(), "_")
				mf, err := migrations.NewMigrator(db).CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
				if err != nil {
					return errors.WithStack(err)
				}
				log.Info("created migration", logger.Data{"name": mf.Name, "path": mf.Path})
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "print migration status",
			Action: func(c *cli.Context) error {
				ms, err := migrations.NewMigrator(db).MigrationsWithStatus(c.Context)
				if err != nil {
					return errors.WithStack(err)
				}
				log.Info("migration status", logger.Data{
					"migrations": ms.String(),
					"unapplied":  ms.Unapplied().String(),
					"last_group": ms.LastGroup().String(),
				})
				return nil
			},
		},
	}
}

func logGroup(log logger.Logger, action string, group *migrate.MigrationGroup) {
	if group.ID == 0 {
		log.Info("nothing to do")
		return
	}
	log.Info(action, logger.Data{"group_id": group.ID, "migrations": group.Migrations.String()})
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
