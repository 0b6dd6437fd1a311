package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/models"
	"github.com/jacksonlee411/approvals/pkg/repo"
)

const (
	requestColumns = `id, account_id, user_id, category_id, title, description, status,
		rejected_reason, submitted_at, decided_at, created_at, updated_at`

	selectRequestQuery = `SELECT ` + requestColumns + ` FROM requests`

	countRequestQuery = `SELECT COUNT(*) FROM requests`

	insertRequestQuery = `
		INSERT INTO requests (id, account_id, user_id, category_id, title, description, status,
			rejected_reason, submitted_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + requestColumns

	// The status guard turns the update into a compare-and-swap.
	transitionRequestQuery = `
		UPDATE requests
		SET status = $4, rejected_reason = $5, submitted_at = $6, decided_at = $7, updated_at = $8
		WHERE id = $1 AND account_id = $2 AND status = $3
		RETURNING ` + requestColumns
)

type RequestRepository struct{}

func NewRequestRepository() request.Repository {
	return &RequestRepository{}
}

func (r *RequestRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (request.Request, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	var row models.Request
	query := repo.Join(selectRequestQuery, "WHERE account_id = $1 AND id = $2")
	if err := scanRequest(tx.QueryRow(ctx, query, accountID, id), &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrNotFound
		}
		return request.Request{}, errors.Wrap(err, "get request")
	}
	return toDomainRequest(&row), nil
}

func (r *RequestRepository) List(ctx context.Context, params *request.FindParams) ([]request.Request, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := buildRequestFilters(params)
	query := repo.Join(
		selectRequestQuery,
		repo.JoinWhere(where...),
		"ORDER BY created_at DESC, id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []request.Request
	for rows.Next() {
		var row models.Request
		if err := scanRequest(rows, &row); err != nil {
			return nil, err
		}
		out = append(out, toDomainRequest(&row))
	}
	return out, rows.Err()
}

func (r *RequestRepository) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildRequestFilters(params)

	var count int64
	if err := tx.QueryRow(ctx, repo.Join(countRequestQuery, repo.JoinWhere(where...)), args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RequestRepository) Create(ctx context.Context, req request.Request) (request.Request, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	db := toDBRequest(req)
	var row models.Request
	err = scanRequest(tx.QueryRow(
		ctx,
		insertRequestQuery,
		db.ID,
		db.AccountID,
		db.UserID,
		db.CategoryID,
		db.Title,
		db.Description,
		db.Status,
		db.RejectedReason,
		db.SubmittedAt,
		db.DecidedAt,
	), &row)
	if err != nil {
		return request.Request{}, mapWriteError("create request", err, nil, request.ErrReferenceMissing)
	}
	return toDomainRequest(&row), nil
}

func (r *RequestRepository) Transition(
	ctx context.Context,
	accountID, id uuid.UUID,
	from request.Status,
	fn func(request.Request) request.Request,
) (request.Request, error) {
	current, err := r.GetByID(ctx, accountID, id)
	if err != nil {
		return request.Request{}, err
	}
	if current.Status() != from {
		return request.Request{}, request.ErrStaleStatus
	}
	next := toDBRequest(fn(current))
	if next.UpdatedAt.IsZero() || !next.UpdatedAt.After(current.UpdatedAt()) {
		next.UpdatedAt = time.Now()
	}

	tx, err := useTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	var row models.Request
	err = scanRequest(tx.QueryRow(
		ctx,
		transitionRequestQuery,
		id,
		accountID,
		string(from),
		next.Status,
		next.RejectedReason,
		next.SubmittedAt,
		next.DecidedAt,
		next.UpdatedAt,
	), &row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrStaleStatus
		}
		return request.Request{}, errors.Wrap(err, "transition request")
	}
	return toDomainRequest(&row), nil
}

func buildRequestFilters(params *request.FindParams) ([]string, []any) {
	where := []string{"account_id = $1"}
	args := []any{params.AccountID}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.CategoryID != uuid.Nil {
		args = append(args, params.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	return where, args
}

func scanRequest(row pgx.Row, dst *models.Request) error {
	return row.Scan(
		&dst.ID,
		&dst.AccountID,
		&dst.UserID,
		&dst.CategoryID,
		&dst.Title,
		&dst.Description,
		&dst.Status,
		&dst.RejectedReason,
		&dst.SubmittedAt,
		&dst.DecidedAt,
		&dst.CreatedAt,
		&dst.UpdatedAt,
	)
}
