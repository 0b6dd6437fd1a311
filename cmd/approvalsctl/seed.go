package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
	"github.com/jacksonlee411/approvals/modules/approvals/seed"
)

type seedOutput struct {
	AccountID         string `json:"account_id"`
	Account           string `json:"account"`
	UsersCreated      int    `json:"users_created"`
	CategoriesCreated int    `json:"categories_created"`
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the fixture account, users and categories (idempotent)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := seed.Default()
			if file != "" {
				loaded, err := seed.LoadFile(file)
				if err != nil {
					return withCode(exitValidation, err)
				}
				f = loaded
			}
			return withPool(cmd.Context(), func(ctx context.Context) error {
				report, err := seed.Run(ctx, f, persistence.NewPgRepositories())
				if err != nil {
					return withCode(exitDB, fmt.Errorf("seed: %w", err))
				}
				return writeJSONLine(cmd.OutOrStdout(), seedOutput{
					AccountID:         report.Account.ID().String(),
					Account:           report.Account.Name(),
					UsersCreated:      report.Users,
					CategoriesCreated: report.Categories,
				})
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed file in TOML (defaults to the built-in fixtures)")
	return cmd
}
