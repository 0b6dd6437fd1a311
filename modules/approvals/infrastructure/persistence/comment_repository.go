package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/models"
	"github.com/jacksonlee411/approvals/pkg/repo"
)

const (
	commentColumns = `id, account_id, request_id, user_id, body, active, created_at, updated_at`

	selectCommentQuery = `SELECT ` + commentColumns + ` FROM comments`

	insertCommentQuery = `
		INSERT INTO comments (id, account_id, request_id, user_id, body, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + commentColumns

	deleteCommentQuery = `DELETE FROM comments WHERE account_id = $1 AND id = $2`
)

type CommentRepository struct{}

func NewCommentRepository() comment.Repository {
	return &CommentRepository{}
}

func (r *CommentRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (comment.Comment, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return comment.Comment{}, err
	}
	var row models.Comment
	query := repo.Join(selectCommentQuery, "WHERE account_id = $1 AND id = $2")
	if err := scanComment(tx.QueryRow(ctx, query, accountID, id), &row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, errors.Wrap(err, "get comment")
	}
	return toDomainComment(&row), nil
}

func (r *CommentRepository) List(ctx context.Context, params *comment.FindParams) ([]comment.Comment, error) {
	if params == nil {
		params = &comment.FindParams{}
	}
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}

	where := []string{"account_id = $1"}
	args := []any{params.AccountID}
	if params.Active != nil {
		args = append(args, *params.Active)
		where = append(where, fmt.Sprintf("active = $%d", len(args)))
	}
	if params.RequestIDs != nil {
		args = append(args, params.RequestIDs)
		where = append(where, fmt.Sprintf("request_id = ANY($%d)", len(args)))
	}

	rows, err := tx.Query(ctx, repo.Join(selectCommentQuery, repo.JoinWhere(where...), "ORDER BY created_at, id"), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comment.Comment
	for rows.Next() {
		var row models.Comment
		if err := scanComment(rows, &row); err != nil {
			return nil, err
		}
		out = append(out, toDomainComment(&row))
	}
	return out, rows.Err()
}

func (r *CommentRepository) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return comment.Comment{}, err
	}
	var row models.Comment
	err = scanComment(tx.QueryRow(
		ctx,
		insertCommentQuery,
		c.ID(),
		c.AccountID(),
		c.RequestID(),
		c.UserID(),
		c.Body(),
		c.Active(),
	), &row)
	if err != nil {
		return comment.Comment{}, mapWriteError("create comment", err, nil, comment.ErrReferenceMissing)
	}
	return toDomainComment(&row), nil
}

func (r *CommentRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteCommentQuery, accountID, id)
	if err != nil {
		return errors.Wrap(err, "delete comment")
	}
	if tag.RowsAffected() == 0 {
		return comment.ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row, dst *models.Comment) error {
	return row.Scan(&dst.ID, &dst.AccountID, &dst.RequestID, &dst.UserID, &dst.Body, &dst.Active, &dst.CreatedAt, &dst.UpdatedAt)
}
