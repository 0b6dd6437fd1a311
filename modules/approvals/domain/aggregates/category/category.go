package category

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

type Category struct {
	id        uuid.UUID
	accountID uuid.UUID
	name      string
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

func New(accountID uuid.UUID, name string) Category {
	return Category{
		id:        uuid.New(),
		accountID: accountID,
		name:      strings.TrimSpace(name),
		active:    true,
	}
}

func Hydrate(
	id uuid.UUID,
	accountID uuid.UUID,
	name string,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
) Category {
	return Category{
		id:        id,
		accountID: accountID,
		name:      name,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c Category) ID() uuid.UUID        { return c.id }
func (c Category) AccountID() uuid.UUID { return c.accountID }
func (c Category) Name() string         { return c.name }
func (c Category) Active() bool         { return c.active }
func (c Category) CreatedAt() time.Time { return c.createdAt }
func (c Category) UpdatedAt() time.Time { return c.updatedAt }

func (c Category) Validate() error {
	return serrors.FromValidator(constants.Validate.Struct(struct {
		Account uuid.UUID `json:"account" validate:"required"`
		Name    string    `json:"name" validate:"required"`
	}{c.accountID, c.name}))
}
