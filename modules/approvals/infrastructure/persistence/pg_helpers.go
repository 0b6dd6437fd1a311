package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/approvals/pkg/composables"
	"github.com/jacksonlee411/approvals/pkg/configuration"
	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/repo"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// useTx returns the query runner bound to ctx. With RLS enforced every query must run
// inside the transaction that carries the account setting.
func useTx(ctx context.Context) (repo.Tx, error) {
	if configuration.Use().RLSEnforce == "enforce" {
		if ctx.Value(constants.TxKey) == nil {
			return nil, errors.New("rls enforced: approvals queries require an explicit transaction")
		}
	}
	return composables.UseTx(ctx)
}

func pgErrorCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

// mapWriteError translates constraint violations into domain errors.
// Unmapped errors are wrapped with op.
func mapWriteError(op string, err error, unique, foreignKey error) error {
	if code, _, ok := pgErrorCode(err); ok {
		switch code {
		case pgUniqueViolation:
			if unique != nil {
				return unique
			}
		case pgForeignKeyViolation:
			if foreignKey != nil {
				return foreignKey
			}
		}
	}
	return errors.Wrap(err, op)
}

// PgTransactor runs units of work through composables.InTx.
type PgTransactor struct{}

func NewPgTransactor() *PgTransactor {
	return &PgTransactor{}
}

func (PgTransactor) InTx(ctx context.Context, fn func(context.Context) error) error {
	return composables.InTx(ctx, fn)
}
