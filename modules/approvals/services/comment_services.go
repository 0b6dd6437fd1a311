package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
)

type CommentCreator struct {
	tx       Transactor
	comments comment.Repository
}

func NewCommentCreator(tx Transactor, comments comment.Repository) *CommentCreator {
	return &CommentCreator{tx: tx, comments: comments}
}

// Create attaches an active comment written by u to req.
func (s *CommentCreator) Create(
	ctx context.Context,
	acc *account.Account,
	req *request.Request,
	u *user.User,
	body string,
) (Result[comment.Comment], error) {
	res, err := s.create(ctx, acc, req, u, body)
	return observe(OpCreateComment, res, err)
}

func (s *CommentCreator) create(
	ctx context.Context,
	acc *account.Account,
	req *request.Request,
	u *user.User,
	body string,
) (Result[comment.Comment], error) {
	switch {
	case acc == nil:
		return missingParam[comment.Comment]("account"), nil
	case req == nil:
		return missingParam[comment.Comment]("request"), nil
	case u == nil:
		return missingParam[comment.Comment]("user"), nil
	}
	if req.AccountID() != acc.ID() {
		return unprocessable[comment.Comment]("Request does not belong to account"), nil
	}
	if u.AccountID() != acc.ID() {
		return unprocessable[comment.Comment]("User does not belong to account"), nil
	}

	entity := comment.New(acc.ID(), req.ID(), u.ID(), body)
	if err := entity.Validate(); err != nil {
		return invalid[comment.Comment](err)
	}

	var created comment.Comment
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.comments.Create(txCtx, entity)
		return err
	})
	if errors.Is(err, comment.ErrReferenceMissing) {
		return notFound[comment.Comment](msgRequestNotFound), nil
	}
	if err != nil {
		return Result[comment.Comment]{}, err
	}

	audit(ctx, OpCreateComment, acc.ID(), created.ID(), nil, auditComment(created))
	return success(created), nil
}

type CommentDestructor struct {
	tx       Transactor
	comments comment.Repository
}

func NewCommentDestructor(tx Transactor, comments comment.Repository) *CommentDestructor {
	return &CommentDestructor{tx: tx, comments: comments}
}

// Destroy hard-deletes a comment. Only its author or an admin may do so. The payload is the
// comment as it was before deletion.
func (s *CommentDestructor) Destroy(
	ctx context.Context,
	acc *account.Account,
	u *user.User,
	id uuid.UUID,
) (Result[comment.Comment], error) {
	res, err := s.destroy(ctx, acc, u, id)
	return observe(OpDestroyComment, res, err)
}

func (s *CommentDestructor) destroy(
	ctx context.Context,
	acc *account.Account,
	u *user.User,
	id uuid.UUID,
) (Result[comment.Comment], error) {
	switch {
	case acc == nil:
		return missingParam[comment.Comment]("account"), nil
	case u == nil:
		return missingParam[comment.Comment]("user"), nil
	}

	const msgCommentNotFound = "Comment not found"
	var res Result[comment.Comment]
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.comments.GetByID(txCtx, acc.ID(), id)
		if errors.Is(err, comment.ErrNotFound) {
			res = notFound[comment.Comment](msgCommentNotFound)
			return nil
		}
		if err != nil {
			return err
		}
		if u.AccountID() != acc.ID() || (existing.UserID() != u.ID() && !u.IsAdmin()) {
			res = forbidden[comment.Comment]("Only author or admin can remove comment")
			return nil
		}

		err = s.comments.Delete(txCtx, acc.ID(), id)
		if errors.Is(err, comment.ErrNotFound) {
			res = notFound[comment.Comment](msgCommentNotFound)
			return nil
		}
		if err != nil {
			return err
		}
		res = success(existing)
		return nil
	})
	if err != nil {
		return Result[comment.Comment]{}, err
	}
	if res.Success {
		audit(ctx, OpDestroyComment, acc.ID(), id, auditComment(res.Payload), nil)
	}
	return res, nil
}
