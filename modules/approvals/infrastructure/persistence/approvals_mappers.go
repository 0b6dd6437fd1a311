package persistence

import (
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence/models"
)

func toDomainAccount(row *models.Account) account.Account {
	return account.Hydrate(row.ID, row.Name, row.TaxID, row.Active, row.CreatedAt, row.UpdatedAt)
}

func toDomainUser(row *models.User) user.User {
	return user.Hydrate(row.ID, row.AccountID, row.Name, row.Email, user.Role(row.Role), row.CreatedAt, row.UpdatedAt)
}

func toDomainCategory(row *models.Category) category.Category {
	return category.Hydrate(row.ID, row.AccountID, row.Name, row.Active, row.CreatedAt, row.UpdatedAt)
}

func toDomainRequest(row *models.Request) request.Request {
	return request.New(
		row.AccountID,
		row.UserID,
		row.CategoryID,
		row.Title,
		request.WithID(row.ID),
		request.WithDescription(deref(row.Description)),
		request.WithStatus(request.Status(row.Status)),
		request.WithRejectedReason(deref(row.RejectedReason)),
		request.WithSubmittedAt(row.SubmittedAt),
		request.WithDecidedAt(row.DecidedAt),
		request.WithCreatedAt(row.CreatedAt),
		request.WithUpdatedAt(row.UpdatedAt),
	)
}

func toDBRequest(r request.Request) *models.Request {
	return &models.Request{
		ID:             r.ID(),
		AccountID:      r.AccountID(),
		UserID:         r.UserID(),
		CategoryID:     r.CategoryID(),
		Title:          r.Title(),
		Description:    nullable(r.Description()),
		Status:         string(r.Status()),
		RejectedReason: nullable(r.RejectedReason()),
		SubmittedAt:    r.SubmittedAt(),
		DecidedAt:      r.DecidedAt(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}

func toDomainComment(row *models.Comment) comment.Comment {
	return comment.New(
		row.AccountID,
		row.RequestID,
		row.UserID,
		row.Body,
		comment.WithID(row.ID),
		comment.WithActive(row.Active),
		comment.WithCreatedAt(row.CreatedAt),
		comment.WithUpdatedAt(row.UpdatedAt),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
