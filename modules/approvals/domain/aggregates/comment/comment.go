package comment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

type Option func(c *Comment)

func WithID(id uuid.UUID) Option {
	return func(c *Comment) {
		c.id = id
	}
}

func WithActive(active bool) Option {
	return func(c *Comment) {
		c.active = active
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(c *Comment) {
		c.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(c *Comment) {
		c.updatedAt = t
	}
}

type Comment struct {
	id        uuid.UUID
	accountID uuid.UUID
	requestID uuid.UUID
	userID    uuid.UUID
	body      string
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

func New(accountID, requestID, userID uuid.UUID, body string, opts ...Option) Comment {
	c := Comment{
		id:        uuid.New(),
		accountID: accountID,
		requestID: requestID,
		userID:    userID,
		body:      strings.TrimSpace(body),
		active:    true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Comment) ID() uuid.UUID        { return c.id }
func (c Comment) AccountID() uuid.UUID { return c.accountID }
func (c Comment) RequestID() uuid.UUID { return c.requestID }
func (c Comment) UserID() uuid.UUID    { return c.userID }
func (c Comment) Body() string         { return c.body }
func (c Comment) Active() bool         { return c.active }
func (c Comment) CreatedAt() time.Time { return c.createdAt }
func (c Comment) UpdatedAt() time.Time { return c.updatedAt }

func (c Comment) Validate() error {
	return serrors.FromValidator(constants.Validate.Struct(struct {
		Account uuid.UUID `json:"account" validate:"required"`
		Request uuid.UUID `json:"request" validate:"required"`
		User    uuid.UUID `json:"user" validate:"required"`
		Body    string    `json:"body" validate:"required"`
	}{c.accountID, c.requestID, c.userID, c.body}))
}
