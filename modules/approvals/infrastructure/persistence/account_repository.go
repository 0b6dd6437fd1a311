package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/models"
	"github.com/jacksonlee411/approvals/pkg/repo"
)

const (
	selectAccountQuery = `SELECT id, name, tax_id, active, created_at, updated_at FROM accounts`

	insertAccountQuery = `
		INSERT INTO accounts (id, name, tax_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, tax_id, active, created_at, updated_at`

	deleteAccountQuery = `DELETE FROM accounts WHERE id = $1`
)

type AccountRepository struct{}

func NewAccountRepository() account.Repository {
	return &AccountRepository{}
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	return r.queryOne(ctx, repo.Join(selectAccountQuery, "WHERE id = $1"), id)
}

func (r *AccountRepository) GetByTaxID(ctx context.Context, taxID string) (account.Account, error) {
	return r.queryOne(ctx, repo.Join(selectAccountQuery, "WHERE tax_id = $1"), taxID)
}

func (r *AccountRepository) List(ctx context.Context) ([]account.Account, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, repo.Join(selectAccountQuery, "ORDER BY name"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []account.Account
	for rows.Next() {
		var row models.Account
		if err := scanAccount(rows, &row); err != nil {
			return nil, err
		}
		out = append(out, toDomainAccount(&row))
	}
	return out, rows.Err()
}

func (r *AccountRepository) Create(ctx context.Context, a account.Account) (account.Account, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	var row models.Account
	err = scanAccount(tx.QueryRow(ctx, insertAccountQuery, a.ID(), a.Name(), a.TaxID(), a.Active()), &row)
	if err != nil {
		return account.Account{}, mapWriteError("create account", err, account.ErrTaxIDTaken, nil)
	}
	return toDomainAccount(&row), nil
}

func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteAccountQuery, id)
	if err != nil {
		return mapWriteError("delete account", err, nil, account.ErrHasChildren)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) queryOne(ctx context.Context, query string, args ...any) (account.Account, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	var row models.Account
	if err := scanAccount(tx.QueryRow(ctx, query, args...), &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "get account")
	}
	return toDomainAccount(&row), nil
}

func scanAccount(row pgx.Row, dst *models.Account) error {
	return row.Scan(&dst.ID, &dst.Name, &dst.TaxID, &dst.Active, &dst.CreatedAt, &dst.UpdatedAt)
}
