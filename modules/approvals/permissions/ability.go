package permissions

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

// Target describes the record an action is attempted on. Status is only meaningful
// for requests.
type Target struct {
	Kind      Kind
	AccountID uuid.UUID
	Status    request.Status
	OwnerID   uuid.UUID
}

func ForRequest(r request.Request) Target {
	return Target{
		Kind:      KindRequest,
		AccountID: r.AccountID(),
		Status:    r.Status(),
		OwnerID:   r.UserID(),
	}
}

func ForComment(c comment.Comment) Target {
	return Target{
		Kind:      KindComment,
		AccountID: c.AccountID(),
		OwnerID:   c.UserID(),
	}
}

type grant struct {
	kind    Kind
	actions []Action
	// status, when set, must match the target's status.
	status request.Status
}

func (g grant) covers(action Action) bool {
	for _, a := range g.actions {
		if a == ActionManage || a == action {
			return true
		}
	}
	return false
}

// Ability is the set of capabilities of one user. The zero value denies everything.
type Ability struct {
	userID    uuid.UUID
	accountID uuid.UUID
	role      user.Role
	grants    []grant
}

// NewAbility derives the capabilities of u. Every grant is confined to u's account.
func NewAbility(u *user.User) Ability {
	if u == nil {
		return Ability{}
	}
	return Ability{
		userID:    u.ID(),
		accountID: u.AccountID(),
		role:      u.Role(),
		grants:    grantsFor(u.Role()),
	}
}

func grantsFor(role user.Role) []grant {
	switch role {
	case user.RoleAdmin:
		return []grant{
			{kind: KindRequest, actions: []Action{ActionManage}},
			{kind: KindComment, actions: []Action{ActionManage}},
		}
	case user.RoleEditor:
		return []grant{
			{kind: KindRequest, actions: []Action{ActionRead, ActionCreate}},
			{kind: KindRequest, actions: []Action{ActionSubmit}, status: request.StatusDraft},
			{kind: KindComment, actions: []Action{ActionRead, ActionCreate}},
		}
	case user.RoleViewer:
		return []grant{
			{kind: KindRequest, actions: []Action{ActionRead}},
			{kind: KindComment, actions: []Action{ActionRead}},
		}
	default:
		return nil
	}
}

func (a Ability) UserID() uuid.UUID    { return a.userID }
func (a Ability) AccountID() uuid.UUID { return a.accountID }
func (a Ability) Role() user.Role      { return a.role }
func (a Ability) IsZero() bool         { return len(a.grants) == 0 }

// Can reports whether action is allowed on t.
func (a Ability) Can(action Action, t Target) bool {
	if a.accountID == uuid.Nil || t.AccountID != a.accountID {
		return false
	}
	for _, g := range a.grants {
		if g.kind != t.Kind || !g.covers(action) {
			continue
		}
		if g.status != "" && g.status != t.Status {
			continue
		}
		return true
	}
	return false
}

// CanKind is the class-level check: it ignores record conditions such as status and
// only asks whether some record of kind in the caller's account may receive action.
func (a Ability) CanKind(action Action, kind Kind) bool {
	for _, g := range a.grants {
		if g.kind == kind && g.covers(action) {
			return true
		}
	}
	return false
}

func (a Ability) Authorize(action Action, t Target) error {
	if a.Can(action, t) {
		return nil
	}
	return forbidden(action, t.Kind)
}

func (a Ability) AuthorizeKind(action Action, kind Kind) error {
	if a.CanKind(action, kind) {
		return nil
	}
	return forbidden(action, kind)
}

// Scope describes which stored records of a kind the ability may read.
type Scope struct {
	AccountID uuid.UUID
	Readable  bool
}

func (a Ability) RequestScope() Scope { return a.scope(KindRequest) }
func (a Ability) CommentScope() Scope { return a.scope(KindComment) }

func (a Ability) scope(kind Kind) Scope {
	return Scope{AccountID: a.accountID, Readable: a.CanKind(ActionRead, kind)}
}

// Restrict intersects the scope with an explicit account filter. The second result is
// false when nothing can match.
func (s Scope) Restrict(accountID uuid.UUID) (uuid.UUID, bool) {
	if !s.Readable || s.AccountID == uuid.Nil {
		return uuid.Nil, false
	}
	if accountID != uuid.Nil && accountID != s.AccountID {
		return uuid.Nil, false
	}
	return s.AccountID, true
}

func forbidden(action Action, kind Kind) *serrors.BaseError {
	return serrors.NewError("FORBIDDEN", "You are not authorized to access this page.", "Errors.Forbidden").
		WithStatus(http.StatusForbidden).
		WithTemplateData(map[string]string{
			"action": string(action),
			"kind":   string(kind),
		})
}
