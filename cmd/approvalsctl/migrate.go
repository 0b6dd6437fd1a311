package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/schema"
	"github.com/jacksonlee411/approvals/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Apply or inspect the embedded approvals migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				conf, err := configuration.Load(".env", ".env.local")
				if err != nil {
					return withCode(exitUsage, err)
				}
				dsn = conf.Database.Opts
			}
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return withCode(exitDB, fmt.Errorf("open db: %w", err))
			}
			defer db.Close()
			return runMigrations(cmd, db, args[0])
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres connection string (defaults to DB_* env)")
	return cmd
}

func runMigrations(cmd *cobra.Command, db *sql.DB, direction string) error {
	goose.SetBaseFS(schema.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return withCode(exitUsage, err)
	}

	ctx := cmd.Context()
	var err error
	switch direction {
	case "up":
		err = goose.UpContext(ctx, db, schema.Dir)
	case "down":
		err = goose.DownContext(ctx, db, schema.Dir)
	case "status":
		err = goose.StatusContext(ctx, db, schema.Dir)
	default:
		return withCode(exitUsage, fmt.Errorf("unknown direction %q (expected up|down|status)", direction))
	}
	if err != nil {
		return withCode(exitDB, fmt.Errorf("migrate %s: %w", direction, err))
	}
	return nil
}
