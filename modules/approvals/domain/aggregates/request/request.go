package request

import (
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

type Option func(r *Request)

func WithID(id uuid.UUID) Option {
	return func(r *Request) {
		r.id = id
	}
}

func WithDescription(description string) Option {
	return func(r *Request) {
		r.description = description
	}
}

func WithStatus(status Status) Option {
	return func(r *Request) {
		r.status = status
	}
}

func WithRejectedReason(reason string) Option {
	return func(r *Request) {
		r.rejectedReason = reason
	}
}

func WithSubmittedAt(t *time.Time) Option {
	return func(r *Request) {
		r.submittedAt = t
	}
}

func WithDecidedAt(t *time.Time) Option {
	return func(r *Request) {
		r.decidedAt = t
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(r *Request) {
		r.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(r *Request) {
		r.updatedAt = t
	}
}

// Request is an approval request. New requests start as drafts.
type Request struct {
	id             uuid.UUID
	accountID      uuid.UUID
	userID         uuid.UUID
	categoryID     uuid.UUID
	title          string
	description    string
	status         Status
	rejectedReason string
	submittedAt    *time.Time
	decidedAt      *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func New(accountID, userID, categoryID uuid.UUID, title string, opts ...Option) Request {
	r := Request{
		id:         uuid.New(),
		accountID:  accountID,
		userID:     userID,
		categoryID: categoryID,
		title:      title,
		status:     StatusDraft,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r Request) ID() uuid.UUID           { return r.id }
func (r Request) AccountID() uuid.UUID    { return r.accountID }
func (r Request) UserID() uuid.UUID       { return r.userID }
func (r Request) CategoryID() uuid.UUID   { return r.categoryID }
func (r Request) Title() string           { return r.title }
func (r Request) Description() string     { return r.description }
func (r Request) Status() Status          { return r.status }
func (r Request) RejectedReason() string  { return r.rejectedReason }
func (r Request) SubmittedAt() *time.Time { return r.submittedAt }
func (r Request) DecidedAt() *time.Time   { return r.decidedAt }
func (r Request) CreatedAt() time.Time    { return r.createdAt }
func (r Request) UpdatedAt() time.Time    { return r.updatedAt }

func (r Request) Submit(at time.Time) Request {
	r.status = StatusPendingApproval
	r.submittedAt = &at
	r.updatedAt = at
	return r
}

func (r Request) Approve(at time.Time) Request {
	r.status = StatusApproved
	r.decidedAt = &at
	r.updatedAt = at
	return r
}

func (r Request) Reject(reason string, at time.Time) Request {
	r.status = StatusRejected
	r.rejectedReason = reason
	r.decidedAt = &at
	r.updatedAt = at
	return r
}

func (r Request) Validate() error {
	return serrors.FromValidator(constants.Validate.Struct(struct {
		Account  uuid.UUID `json:"account" validate:"required"`
		User     uuid.UUID `json:"user" validate:"required"`
		Category uuid.UUID `json:"category" validate:"required"`
		Title    string    `json:"title" validate:"required,max=255"`
		Status   string    `json:"status" validate:"required,oneof=draft pending_approval approved rejected"`
	}{r.accountID, r.userID, r.categoryID, r.title, string(r.status)}))
}
