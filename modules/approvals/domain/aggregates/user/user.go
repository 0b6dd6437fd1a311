package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Roles lists every role, least privileged first.
var Roles = []Role{RoleViewer, RoleEditor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

func ParseRole(v string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	if r == "" {
		return RoleViewer, nil
	}
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", v)
	}
	return r, nil
}

type User struct {
	id        uuid.UUID
	accountID uuid.UUID
	name      string
	email     string
	role      Role
	createdAt time.Time
	updatedAt time.Time
}

// New builds a user of the given account. An empty role defaults to viewer.
func New(accountID uuid.UUID, name, email string, role Role) User {
	if role == "" {
		role = RoleViewer
	}
	return User{
		id:        uuid.New(),
		accountID: accountID,
		name:      strings.TrimSpace(name),
		email:     strings.ToLower(strings.TrimSpace(email)),
		role:      role,
	}
}

func Hydrate(
	id uuid.UUID,
	accountID uuid.UUID,
	name string,
	email string,
	role Role,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		id:        id,
		accountID: accountID,
		name:      name,
		email:     email,
		role:      role,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u User) ID() uuid.UUID        { return u.id }
func (u User) AccountID() uuid.UUID { return u.accountID }
func (u User) Name() string         { return u.name }
func (u User) Email() string        { return u.email }
func (u User) Role() Role           { return u.role }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }
func (u User) IsAdmin() bool        { return u.role == RoleAdmin }

func (u User) Validate() error {
	return serrors.FromValidator(constants.Validate.Struct(struct {
		Account uuid.UUID `json:"account" validate:"required"`
		Name    string    `json:"name" validate:"required"`
		Email   string    `json:"email" validate:"required,email"`
		Role    string    `json:"role" validate:"required,oneof=viewer editor admin"`
	}{u.accountID, u.name, u.email, string(u.role)}))
}
