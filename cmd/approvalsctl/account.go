package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
)

type accountOutput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TaxID  string `json:"tax_id"`
	Active bool   `json:"active"`
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect or remove tenant accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every account as a JSON line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repos := persistence.NewPgRepositories()
			return withPool(cmd.Context(), func(ctx context.Context) error {
				return repos.Tx.InTx(ctx, func(txCtx context.Context) error {
					accounts, err := repos.Accounts.List(txCtx)
					if err != nil {
						return withCode(exitDB, err)
					}
					for _, a := range accounts {
						out := accountOutput{ID: a.ID().String(), Name: a.Name(), TaxID: a.TaxID(), Active: a.Active()}
						if err := writeJSONLine(cmd.OutOrStdout(), out); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account that no longer owns any rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid account id %q", args[0]))
			}
			repos := persistence.NewPgRepositories()
			return withPool(cmd.Context(), func(ctx context.Context) error {
				err := repos.Tx.InTx(ctx, func(txCtx context.Context) error {
					return repos.Accounts.Delete(txCtx, id)
				})
				return accountDeleteError(id, err)
			})
		},
	})
	return cmd
}

func accountDeleteError(id uuid.UUID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, account.ErrNotFound):
		return withCode(exitValidation, fmt.Errorf("account %s not found", id))
	case errors.Is(err, account.ErrHasChildren):
		return withCode(exitValidation, fmt.Errorf("account %s: %w", id, err))
	default:
		return withCode(exitDB, err)
	}
}
