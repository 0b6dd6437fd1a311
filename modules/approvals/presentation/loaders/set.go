package loaders

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/authn"
	"github.com/jacksonlee411/approvals/modules/approvals/services"
	"github.com/jacksonlee411/approvals/pkg/composables"
)

type ctxKey struct{}

var ErrNoLoaders = errors.New("no loaders found in context")

type Dependencies struct {
	Tx         services.Transactor
	Users      user.Repository
	Categories category.Repository
	Comments   *services.CommentLister
}

// Set holds the loaders of one request. Users and categories are scoped to the caller's
// account; comments go through the comment lister so the caller's ability applies.
type Set struct {
	Users      *Loader[uuid.UUID, user.User]
	Categories *Loader[uuid.UUID, category.Category]

	deps      Dependencies
	ability   *permissions.Ability
	mu        sync.Mutex
	byRequest map[string]*Loader[uuid.UUID, []comment.Comment]
}

func NewSet(deps Dependencies, accountID uuid.UUID, ability *permissions.Ability) *Set {
	s := &Set{
		deps:      deps,
		ability:   ability,
		byRequest: make(map[string]*Loader[uuid.UUID, []comment.Comment]),
	}
	s.Users = NewLoader(func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
		out := make(map[uuid.UUID]user.User, len(ids))
		err := deps.Tx.InTx(ctx, func(txCtx context.Context) error {
			found, err := deps.Users.GetByIDs(txCtx, accountID, ids)
			for _, u := range found {
				out[u.ID()] = u
			}
			return err
		})
		return out, err
	})
	s.Categories = NewLoader(func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]category.Category, error) {
		out := make(map[uuid.UUID]category.Category, len(ids))
		err := deps.Tx.InTx(ctx, func(txCtx context.Context) error {
			found, err := deps.Categories.GetByIDs(txCtx, accountID, ids)
			for _, c := range found {
				out[c.ID()] = c
			}
			return err
		})
		return out, err
	})
	return s
}

// CommentsByRequest returns the loader of comments grouped by request id for one value
// of the active filter. Requests without comments resolve to an empty slice.
func (s *Set) CommentsByRequest(active *bool) *Loader[uuid.UUID, []comment.Comment] {
	key := "all"
	if active != nil {
		key = strconv.FormatBool(*active)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.byRequest[key]; ok {
		return l
	}
	l := NewLoader(func(ctx context.Context, requestIDs []uuid.UUID) (map[uuid.UUID][]comment.Comment, error) {
		// An empty id list would mean "no filter" to the lister.
		if len(requestIDs) == 0 {
			return map[uuid.UUID][]comment.Comment{}, nil
		}
		res, err := s.deps.Comments.List(ctx, s.ability, active, requestIDs...)
		if err != nil {
			return nil, err
		}
		out := make(map[uuid.UUID][]comment.Comment, len(requestIDs))
		for _, id := range requestIDs {
			out[id] = []comment.Comment{}
		}
		if !res.Success {
			return out, nil
		}
		for _, c := range res.Payload {
			out[c.RequestID()] = append(out[c.RequestID()], c)
		}
		return out, nil
	})
	s.byRequest[key] = l
	return l
}

func WithSet(ctx context.Context, s *Set) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func Use(ctx context.Context) (*Set, error) {
	s, ok := ctx.Value(ctxKey{}).(*Set)
	if !ok || s == nil {
		return nil, ErrNoLoaders
	}
	return s, nil
}

// Middleware attaches a fresh Set to every request. It expects the caller's account and
// ability in the context.
func Middleware(deps Dependencies) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, _ := composables.UseAccountID(r.Context())
			var ability *permissions.Ability
			if a, err := authn.UseAbility(r.Context()); err == nil {
				ability = &a
			}
			set := NewSet(deps, accountID, ability)
			next.ServeHTTP(w, r.WithContext(WithSet(r.Context(), set)))
		})
	}
}
