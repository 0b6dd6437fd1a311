package dtos

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

type CreateRequestDTO struct {
	Title       string `json:"title"`
	CategoryID  string `json:"category_id"`
	Description string `json:"description"`
}

type RejectRequestDTO struct {
	RejectedReason string `json:"rejected_reason"`
}

type CreateCommentDTO struct {
	Body string `json:"body"`
}

// RequestListQuery is decoded from the query string of list and export calls.
type RequestListQuery struct {
	AccountID  string `form:"account_id" json:"account_id" validate:"omitempty,uuid"`
	Status     string `form:"status" json:"status"`
	CategoryID string `form:"category_id" json:"category_id"`
	Limit      int    `form:"limit" json:"limit" validate:"min=0"`
	Offset     int    `form:"offset" json:"offset" validate:"min=0"`
}

func (q *RequestListQuery) Ok() error {
	return serrors.FromValidator(constants.Validate.Struct(q))
}

// AccountUUID falls back to the caller's account when the query names none.
func (q *RequestListQuery) AccountUUID(fallback uuid.UUID) uuid.UUID {
	if id, err := uuid.Parse(strings.TrimSpace(q.AccountID)); err == nil {
		return id
	}
	return fallback
}

type CommentListQuery struct {
	Active    string `form:"active"`
	RequestID string `form:"request_id"`
}

// ActiveFilter returns nil unless active is a recognizable boolean.
func (q *CommentListQuery) ActiveFilter() *bool {
	return parseBool(q.Active)
}

type RequestDetailQuery struct {
	CommentsActive string `form:"comments_active"`
}

func (q *RequestDetailQuery) ActiveFilter() *bool {
	return parseBool(q.CommentsActive)
}

func parseBool(v string) *bool {
	var out bool
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1":
		out = true
	case "false", "0":
		out = false
	default:
		return nil
	}
	return &out
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CommentResponse struct {
	ID        string        `json:"id"`
	AccountID string        `json:"account_id"`
	RequestID string        `json:"request_id"`
	UserID    string        `json:"user_id"`
	Body      string        `json:"body"`
	Active    bool          `json:"active"`
	User      *UserResponse `json:"user,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type RequestResponse struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"account_id"`
	UserID         string            `json:"user_id"`
	CategoryID     string            `json:"category_id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         string            `json:"status"`
	RejectedReason string            `json:"rejected_reason,omitempty"`
	SubmittedAt    *time.Time        `json:"submitted_at,omitempty"`
	DecidedAt      *time.Time        `json:"decided_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	User           *UserResponse     `json:"user,omitempty"`
	Category       *CategoryResponse `json:"category,omitempty"`
	Comments       []CommentResponse `json:"comments,omitempty"`
}

type RequestListResponse struct {
	Items  []RequestResponse `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type CommentListResponse struct {
	Items []CommentResponse `json:"items"`
}
