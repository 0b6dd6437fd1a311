package composables

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jacksonlee411/approvals/pkg/configuration"
)

// ApplyAccountRLS scopes the transaction to the account in ctx when RLS is enforced.
func ApplyAccountRLS(ctx context.Context, tx pgx.Tx) error {
	if configuration.Use().RLSEnforce != "enforce" {
		return nil
	}
	accountID, err := UseAccountID(ctx)
	if err != nil {
		return fmt.Errorf("rls requires account in context: %w", err)
	}
	_, err = tx.Exec(ctx, "SELECT set_config('app.current_account', $1, true)", accountID.String())
	if err != nil {
		return fmt.Errorf("failed to set rls account context: %w", err)
	}
	return nil
}
