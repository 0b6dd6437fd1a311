package mappers

import (
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/controllers/dtos"
)

func UserToResponse(u user.User) *dtos.UserResponse {
	return &dtos.UserResponse{
		ID:    u.ID().String(),
		Name:  u.Name(),
		Email: u.Email(),
		Role:  string(u.Role()),
	}
}

func CategoryToResponse(c category.Category) *dtos.CategoryResponse {
	return &dtos.CategoryResponse{
		ID:   c.ID().String(),
		Name: c.Name(),
	}
}

func CommentToResponse(c comment.Comment) dtos.CommentResponse {
	return dtos.CommentResponse{
		ID:        c.ID().String(),
		AccountID: c.AccountID().String(),
		RequestID: c.RequestID().String(),
		UserID:    c.UserID().String(),
		Body:      c.Body(),
		Active:    c.Active(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func CommentsToResponse(items []comment.Comment) []dtos.CommentResponse {
	out := make([]dtos.CommentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CommentToResponse(c))
	}
	return out
}

func RequestToResponse(r request.Request) dtos.RequestResponse {
	return dtos.RequestResponse{
		ID:             r.ID().String(),
		AccountID:      r.AccountID().String(),
		UserID:         r.UserID().String(),
		CategoryID:     r.CategoryID().String(),
		Title:          r.Title(),
		Description:    r.Description(),
		Status:         string(r.Status()),
		RejectedReason: r.RejectedReason(),
		SubmittedAt:    r.SubmittedAt(),
		DecidedAt:      r.DecidedAt(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}
