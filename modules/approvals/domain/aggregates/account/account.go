package account

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/cnpj"
	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

// Account is the tenant every other record belongs to.
type Account struct {
	id        uuid.UUID
	name      string
	taxID     string
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

func New(name, taxID string) Account {
	return Account{
		id:     uuid.New(),
		name:   strings.TrimSpace(name),
		taxID:  normalizeTaxID(taxID),
		active: true,
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	taxID string,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
) Account {
	return Account{
		id:        id,
		name:      name,
		taxID:     taxID,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (a Account) ID() uuid.UUID        { return a.id }
func (a Account) Name() string         { return a.name }
func (a Account) TaxID() string        { return a.taxID }
func (a Account) Active() bool         { return a.active }
func (a Account) CreatedAt() time.Time { return a.createdAt }
func (a Account) UpdatedAt() time.Time { return a.updatedAt }

func (a Account) Validate() error {
	return serrors.FromValidator(constants.Validate.Struct(struct {
		Name  string `json:"name" validate:"required"`
		TaxID string `json:"tax_id" validate:"required,cnpj"`
	}{a.name, a.taxID}))
}

// Formatted tax ids are stored as given; bare digit strings get the canonical mask.
func normalizeTaxID(v string) string {
	v = strings.TrimSpace(v)
	if f, err := cnpj.Format(v); err == nil && cnpj.Digits(v) == v {
		return f
	}
	return v
}
