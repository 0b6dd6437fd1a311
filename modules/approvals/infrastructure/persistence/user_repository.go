package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/models"
	"github.com/jacksonlee411/approvals/pkg/repo"
)

const (
	selectUserQuery = `SELECT id, account_id, name, email, role, created_at, updated_at FROM users`

	insertUserQuery = `
		INSERT INTO users (id, account_id, name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, account_id, name, email, role, created_at, updated_at`
)

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (user.User, error) {
	return r.queryOne(ctx, repo.Join(selectUserQuery, "WHERE account_id = $1 AND id = $2"), accountID, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, accountID uuid.UUID, email string) (user.User, error) {
	return r.queryOne(ctx, repo.Join(selectUserQuery, "WHERE account_id = $1 AND email = lower($2)"), accountID, email)
}

func (r *UserRepository) GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryMany(ctx, repo.Join(selectUserQuery, "WHERE account_id = $1 AND id = ANY($2)"), accountID, ids)
}

func (r *UserRepository) List(ctx context.Context, accountID uuid.UUID) ([]user.User, error) {
	return r.queryMany(ctx, repo.Join(selectUserQuery, "WHERE account_id = $1 ORDER BY name"), accountID)
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	var row models.User
	err = scanUser(tx.QueryRow(ctx, insertUserQuery, u.ID(), u.AccountID(), u.Name(), u.Email(), string(u.Role())), &row)
	if err != nil {
		return user.User{}, mapWriteError("create user", err, user.ErrEmailTaken, nil)
	}
	return toDomainUser(&row), nil
}

func (r *UserRepository) queryOne(ctx context.Context, query string, args ...any) (user.User, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	var row models.User
	if err := scanUser(tx.QueryRow(ctx, query, args...), &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "get user")
	}
	return toDomainUser(&row), nil
}

func (r *UserRepository) queryMany(ctx context.Context, query string, args ...any) ([]user.User, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var row models.User
		if err := scanUser(rows, &row); err != nil {
			return nil, err
		}
		out = append(out, toDomainUser(&row))
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row, dst *models.User) error {
	return row.Scan(&dst.ID, &dst.AccountID, &dst.Name, &dst.Email, &dst.Role, &dst.CreatedAt, &dst.UpdatedAt)
}
