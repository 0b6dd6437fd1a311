package authn

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/pkg/composables"
	"github.com/jacksonlee411/approvals/pkg/middleware"
)

const codeUnauthenticated = "UNAUTHENTICATED"

// Transactor is satisfied by the pgx and in-memory stores.
type Transactor interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}

type Options struct {
	AccountHeader string
	UserHeader    string
	Tx            Transactor
	Accounts      account.Repository
	Users         user.Repository
}

var errUnknownCaller = errors.New("unknown account or user")

// Authenticate resolves the caller from the account and user headers. Requests without a
// known, active account and a user of that account are rejected with 401.
func Authenticate(opts Options) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := uuid.Parse(strings.TrimSpace(r.Header.Get(opts.AccountHeader)))
			if err != nil {
				middleware.ErrorJSON(w, r, http.StatusUnauthorized, codeUnauthenticated, "Missing or invalid "+opts.AccountHeader+" header")
				return
			}
			userID, err := uuid.Parse(strings.TrimSpace(r.Header.Get(opts.UserHeader)))
			if err != nil {
				middleware.ErrorJSON(w, r, http.StatusUnauthorized, codeUnauthenticated, "Missing or invalid "+opts.UserHeader+" header")
				return
			}

			ctx := composables.WithAccountID(r.Context(), accountID)
			acc, caller, err := lookup(ctx, opts, accountID, userID)
			switch {
			case errors.Is(err, errUnknownCaller):
				middleware.ErrorJSON(w, r, http.StatusUnauthorized, codeUnauthenticated, "Unknown account or user")
				return
			case err != nil:
				composables.UseLogger(ctx).WithError(err).Error("authenticate: lookup failed")
				middleware.ErrorJSON(w, r, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
				return
			}

			ctx = WithAccount(ctx, acc)
			ctx = WithUser(ctx, caller)
			ctx = composables.WithLogger(ctx, composables.UseLogger(ctx).WithField("user-id", caller.ID()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// lookup loads the account and the user inside it. Inactive accounts count as unknown.
func lookup(ctx context.Context, opts Options, accountID, userID uuid.UUID) (account.Account, user.User, error) {
	var (
		acc    account.Account
		caller user.User
	)
	err := opts.Tx.InTx(ctx, func(txCtx context.Context) error {
		var err error
		acc, err = opts.Accounts.GetByID(txCtx, accountID)
		if errors.Is(err, account.ErrNotFound) {
			return errUnknownCaller
		}
		if err != nil {
			return err
		}
		if !acc.Active() {
			return errUnknownCaller
		}
		caller, err = opts.Users.GetByID(txCtx, accountID, userID)
		if errors.Is(err, user.ErrNotFound) {
			return errUnknownCaller
		}
		return err
	})
	return acc, caller, err
}

// ProvideAbility builds the caller's Ability once per request. Without a caller the
// Ability denies everything.
func ProvideAbility() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ability permissions.Ability
			if caller, err := UseUser(r.Context()); err == nil {
				ability = permissions.NewAbility(&caller)
			} else {
				ability = permissions.NewAbility(nil)
			}
			next.ServeHTTP(w, r.WithContext(WithAbility(r.Context(), ability)))
		})
	}
}
