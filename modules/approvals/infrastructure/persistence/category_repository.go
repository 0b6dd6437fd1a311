package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/models"
	"github.com/jacksonlee411/approvals/pkg/repo"
)

const (
	selectCategoryQuery = `SELECT id, account_id, name, active, created_at, updated_at FROM categories`

	insertCategoryQuery = `
		INSERT INTO categories (id, account_id, name, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, account_id, name, active, created_at, updated_at`
)

type CategoryRepository struct{}

func NewCategoryRepository() category.Repository {
	return &CategoryRepository{}
}

func (r *CategoryRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (category.Category, error) {
	return r.queryOne(ctx, repo.Join(selectCategoryQuery, "WHERE account_id = $1 AND id = $2"), accountID, id)
}

func (r *CategoryRepository) GetByName(ctx context.Context, accountID uuid.UUID, name string) (category.Category, error) {
	return r.queryOne(ctx, repo.Join(selectCategoryQuery, "WHERE account_id = $1 AND name = $2 ORDER BY created_at LIMIT 1"), accountID, name)
}

func (r *CategoryRepository) GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]category.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryMany(ctx, repo.Join(selectCategoryQuery, "WHERE account_id = $1 AND id = ANY($2)"), accountID, ids)
}

func (r *CategoryRepository) List(ctx context.Context, accountID uuid.UUID) ([]category.Category, error) {
	return r.queryMany(ctx, repo.Join(selectCategoryQuery, "WHERE account_id = $1 ORDER BY name"), accountID)
}

func (r *CategoryRepository) Create(ctx context.Context, c category.Category) (category.Category, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return category.Category{}, err
	}
	var row models.Category
	err = scanCategory(tx.QueryRow(ctx, insertCategoryQuery, c.ID(), c.AccountID(), c.Name(), c.Active()), &row)
	if err != nil {
		return category.Category{}, mapWriteError("create category", err, nil, nil)
	}
	return toDomainCategory(&row), nil
}

func (r *CategoryRepository) queryOne(ctx context.Context, query string, args ...any) (category.Category, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return category.Category{}, err
	}
	var row models.Category
	if err := scanCategory(tx.QueryRow(ctx, query, args...), &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, errors.Wrap(err, "get category")
	}
	return toDomainCategory(&row), nil
}

func (r *CategoryRepository) queryMany(ctx context.Context, query string, args ...any) ([]category.Category, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		var row models.Category
		if err := scanCategory(rows, &row); err != nil {
			return nil, err
		}
		out = append(out, toDomainCategory(&row))
	}
	return out, rows.Err()
}

func scanCategory(row pgx.Row, dst *models.Category) error {
	return row.Scan(&dst.ID, &dst.AccountID, &dst.Name, &dst.Active, &dst.CreatedAt, &dst.UpdatedAt)
}
