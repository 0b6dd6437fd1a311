package controllers

import (
	"errors"
	"net/http"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/authn"
	"github.com/jacksonlee411/approvals/pkg/authz"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

var (
	requestsAuthzObject = authz.ObjectName("approvals", "requests")
	commentsAuthzObject = authz.ObjectName("approvals", "comments")
)

type caller struct {
	account account.Account
	user    user.User
	ability permissions.Ability
}

// useCaller reads what Authenticate and ProvideAbility put on the request.
func useCaller(w http.ResponseWriter, r *http.Request) (caller, bool) {
	acc, accErr := authn.UseAccount(r.Context())
	u, userErr := authn.UseUser(r.Context())
	ability, abilityErr := authn.UseAbility(r.Context())
	if err := errors.Join(accErr, userErr, abilityErr); err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, codeUnauthenticated, "Unknown account or user", "")
		return caller{}, false
	}
	return caller{account: acc, user: u, ability: ability}, true
}

// ensureApprovalsAuthz is the route-level gate. Denials only block in enforce mode; record
// checks happen afterwards through the caller's ability.
func ensureApprovalsAuthz(w http.ResponseWriter, r *http.Request, svc *authz.Service, c caller, object, action string) bool {
	if svc == nil {
		return true
	}
	req := authz.NewRequest(
		authz.SubjectForRole(string(c.user.Role())),
		authz.DomainFromAccount(c.account.ID()),
		object,
		authz.NormalizeAction(action),
	)
	err := svc.Authorize(r.Context(), req)
	if err == nil {
		return true
	}
	var baseErr *serrors.BaseError
	if errors.As(err, &baseErr) {
		writeAPIError(w, r, http.StatusForbidden, codeForbidden, baseErr.Message, "")
		return false
	}
	writeInternalError(w, r, err)
	return false
}

// ensureAbility renders a denial returned by Ability.Authorize or AuthorizeKind.
func ensureAbility(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return true
	}
	message := "You are not authorized to access this page."
	var baseErr *serrors.BaseError
	if errors.As(err, &baseErr) {
		message = baseErr.Message
	}
	writeAPIError(w, r, http.StatusForbidden, codeForbidden, message, "")
	return false
}
