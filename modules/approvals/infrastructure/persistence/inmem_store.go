package persistence

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
)

type SafeMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{
		m: make(map[K]V),
	}
}

func (s *SafeMap[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *SafeMap[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, found := s.m[key]
	return val, found
}

func (s *SafeMap[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *SafeMap[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.m))
}

// InmemStore keeps every approvals table in memory. Writes are serialized by a single
// lock so cross-table checks (references, restrict-on-delete, status CAS) stay atomic.
type InmemStore struct {
	writeMu    sync.Mutex
	accounts   *SafeMap[uuid.UUID, account.Account]
	users      *SafeMap[uuid.UUID, user.User]
	categories *SafeMap[uuid.UUID, category.Category]
	requests   *SafeMap[uuid.UUID, request.Request]
	comments   *SafeMap[uuid.UUID, comment.Comment]
	now        func() time.Time
	lastStamp  time.Time
}

func NewInmemStore() *InmemStore {
	return &InmemStore{
		accounts:   NewSafeMap[uuid.UUID, account.Account](),
		users:      NewSafeMap[uuid.UUID, user.User](),
		categories: NewSafeMap[uuid.UUID, category.Category](),
		requests:   NewSafeMap[uuid.UUID, request.Request](),
		comments:   NewSafeMap[uuid.UUID, comment.Comment](),
		now:        time.Now,
	}
}

func (s *InmemStore) Accounts() account.Repository    { return &inmemAccountRepository{s} }
func (s *InmemStore) Users() user.Repository          { return &inmemUserRepository{s} }
func (s *InmemStore) Categories() category.Repository { return &inmemCategoryRepository{s} }
func (s *InmemStore) Requests() request.Repository    { return &inmemRequestRepository{s} }
func (s *InmemStore) Comments() comment.Repository    { return &inmemCommentRepository{s} }

// InTx runs fn directly; every repository call is atomic on its own.
func (s *InmemStore) InTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// stamp is called with writeMu held. Stamps strictly increase so created_at ordering is
// stable even when the clock does not advance between writes.
func (s *InmemStore) stamp() time.Time {
	now := s.now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = now
	return now
}

type inmemAccountRepository struct{ s *InmemStore }

func (r *inmemAccountRepository) GetByID(_ context.Context, id uuid.UUID) (account.Account, error) {
	a, ok := r.s.accounts.Get(id)
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (r *inmemAccountRepository) GetByTaxID(_ context.Context, taxID string) (account.Account, error) {
	for _, a := range r.s.accounts.Values() {
		if a.TaxID() == taxID {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (r *inmemAccountRepository) List(_ context.Context) ([]account.Account, error) {
	out := r.s.accounts.Values()
	slices.SortFunc(out, func(a, b account.Account) int { return cmp.Compare(a.Name(), b.Name()) })
	return out, nil
}

func (r *inmemAccountRepository) Create(_ context.Context, a account.Account) (account.Account, error) {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	for _, existing := range r.s.accounts.Values() {
		if existing.TaxID() == a.TaxID() {
			return account.Account{}, account.ErrTaxIDTaken
		}
	}
	now := r.s.stamp()
	stored := account.Hydrate(orNew(a.ID()), a.Name(), a.TaxID(), a.Active(), now, now)
	r.s.accounts.Set(stored.ID(), stored)
	return stored, nil
}

func (r *inmemAccountRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	if _, ok := r.s.accounts.Get(id); !ok {
		return account.ErrNotFound
	}
	if r.s.accountHasChildren(id) {
		return account.ErrHasChildren
	}
	r.s.accounts.Delete(id)
	return nil
}

func (s *InmemStore) accountHasChildren(id uuid.UUID) bool {
	for _, u := range s.users.Values() {
		if u.AccountID() == id {
			return true
		}
	}
	for _, c := range s.categories.Values() {
		if c.AccountID() == id {
			return true
		}
	}
	for _, r := range s.requests.Values() {
		if r.AccountID() == id {
			return true
		}
	}
	for _, c := range s.comments.Values() {
		if c.AccountID() == id {
			return true
		}
	}
	return false
}

type inmemUserRepository struct{ s *InmemStore }

func (r *inmemUserRepository) GetByID(_ context.Context, accountID, id uuid.UUID) (user.User, error) {
	u, ok := r.s.users.Get(id)
	if !ok || u.AccountID() != accountID {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *inmemUserRepository) GetByIDs(_ context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]user.User, error) {
	var out []user.User
	for _, id := range ids {
		if u, ok := r.s.users.Get(id); ok && u.AccountID() == accountID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *inmemUserRepository) GetByEmail(_ context.Context, accountID uuid.UUID, email string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users.Values() {
		if u.AccountID() == accountID && u.Email() == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *inmemUserRepository) List(_ context.Context, accountID uuid.UUID) ([]user.User, error) {
	var out []user.User
	for _, u := range r.s.users.Values() {
		if u.AccountID() == accountID {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b user.User) int { return cmp.Compare(a.Name(), b.Name()) })
	return out, nil
}

func (r *inmemUserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	if _, ok := r.s.accounts.Get(u.AccountID()); !ok {
		return user.User{}, account.ErrNotFound
	}
	for _, existing := range r.s.users.Values() {
		if existing.AccountID() == u.AccountID() && existing.Email() == u.Email() {
			return user.User{}, user.ErrEmailTaken
		}
	}
	now := r.s.stamp()
	stored := user.Hydrate(orNew(u.ID()), u.AccountID(), u.Name(), u.Email(), u.Role(), now, now)
	r.s.users.Set(stored.ID(), stored)
	return stored, nil
}

type inmemCategoryRepository struct{ s *InmemStore }

func (r *inmemCategoryRepository) GetByID(_ context.Context, accountID, id uuid.UUID) (category.Category, error) {
	c, ok := r.s.categories.Get(id)
	if !ok || c.AccountID() != accountID {
		return category.Category{}, category.ErrNotFound
	}
	return c, nil
}

func (r *inmemCategoryRepository) GetByIDs(_ context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]category.Category, error) {
	var out []category.Category
	for _, id := range ids {
		if c, ok := r.s.categories.Get(id); ok && c.AccountID() == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *inmemCategoryRepository) GetByName(_ context.Context, accountID uuid.UUID, name string) (category.Category, error) {
	for _, c := range r.s.categories.Values() {
		if c.AccountID() == accountID && c.Name() == name {
			return c, nil
		}
	}
	return category.Category{}, category.ErrNotFound
}

func (r *inmemCategoryRepository) List(_ context.Context, accountID uuid.UUID) ([]category.Category, error) {
	var out []category.Category
	for _, c := range r.s.categories.Values() {
		if c.AccountID() == accountID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b category.Category) int { return cmp.Compare(a.Name(), b.Name()) })
	return out, nil
}

func (r *inmemCategoryRepository) Create(_ context.Context, c category.Category) (category.Category, error) {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	if _, ok := r.s.accounts.Get(c.AccountID()); !ok {
		return category.Category{}, account.ErrNotFound
	}
	now := r.s.stamp()
	stored := category.Hydrate(orNew(c.ID()), c.AccountID(), c.Name(), c.Active(), now, now)
	r.s.categories.Set(stored.ID(), stored)
	return stored, nil
}

type inmemRequestRepository struct{ s *InmemStore }

func (r *inmemRequestRepository) GetByID(_ context.Context, accountID, id uuid.UUID) (request.Request, error) {
	req, ok := r.s.requests.Get(id)
	if !ok || req.AccountID() != accountID {
		return request.Request{}, request.ErrNotFound
	}
	return req, nil
}

func (r *inmemRequestRepository) List(_ context.Context, params *request.FindParams) ([]request.Request, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	matched := r.filter(params)
	slices.SortFunc(matched, func(a, b request.Request) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return paginate(matched, params.Limit, params.Offset), nil
}

func (r *inmemRequestRepository) Count(_ context.Context, params *request.FindParams) (int64, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	return int64(len(r.filter(params))), nil
}

func (r *inmemRequestRepository) filter(params *request.FindParams) []request.Request {
	var out []request.Request
	for _, req := range r.s.requests.Values() {
		if req.AccountID() != params.AccountID {
			continue
		}
		if params.Status != "" && req.Status() != params.Status {
			continue
		}
		if params.CategoryID != uuid.Nil && req.CategoryID() != params.CategoryID {
			continue
		}
		out = append(out, req)
	}
	return out
}

func (r *inmemRequestRepository) Create(_ context.Context, req request.Request) (request.Request, error) {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	u, ok := r.s.users.Get(req.UserID())
	if !ok || u.AccountID() != req.AccountID() {
		return request.Request{}, request.ErrReferenceMissing
	}
	c, ok := r.s.categories.Get(req.CategoryID())
	if !ok || c.AccountID() != req.AccountID() {
		return request.Request{}, request.ErrReferenceMissing
	}

	now := r.s.stamp()
	stored := request.New(
		req.AccountID(),
		req.UserID(),
		req.CategoryID(),
		req.Title(),
		request.WithID(orNew(req.ID())),
		request.WithDescription(req.Description()),
		request.WithStatus(req.Status()),
		request.WithRejectedReason(req.RejectedReason()),
		request.WithSubmittedAt(req.SubmittedAt()),
		request.WithDecidedAt(req.DecidedAt()),
		request.WithCreatedAt(now),
		request.WithUpdatedAt(now),
	)
	r.s.requests.Set(stored.ID(), stored)
	return stored, nil
}

func (r *inmemRequestRepository) Transition(
	_ context.Context,
	accountID, id uuid.UUID,
	from request.Status,
	fn func(request.Request) request.Request,
) (request.Request, error) {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	current, ok := r.s.requests.Get(id)
	if !ok || current.AccountID() != accountID {
		return request.Request{}, request.ErrNotFound
	}
	if current.Status() != from {
		return request.Request{}, request.ErrStaleStatus
	}
	next := fn(current)
	r.s.requests.Set(id, next)
	return next, nil
}

type inmemCommentRepository struct{ s *InmemStore }

func (r *inmemCommentRepository) GetByID(_ context.Context, accountID, id uuid.UUID) (comment.Comment, error) {
	c, ok := r.s.comments.Get(id)
	if !ok || c.AccountID() != accountID {
		return comment.Comment{}, comment.ErrNotFound
	}
	return c, nil
}

func (r *inmemCommentRepository) List(_ context.Context, params *comment.FindParams) ([]comment.Comment, error) {
	if params == nil {
		params = &comment.FindParams{}
	}
	var out []comment.Comment
	for _, c := range r.s.comments.Values() {
		if c.AccountID() != params.AccountID {
			continue
		}
		if params.Active != nil && c.Active() != *params.Active {
			continue
		}
		if params.RequestIDs != nil && !slices.Contains(params.RequestIDs, c.RequestID()) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b comment.Comment) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return out, nil
}

func (r *inmemCommentRepository) Create(_ context.Context, c comment.Comment) (comment.Comment, error) {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	req, ok := r.s.requests.Get(c.RequestID())
	if !ok || req.AccountID() != c.AccountID() {
		return comment.Comment{}, comment.ErrReferenceMissing
	}
	u, ok := r.s.users.Get(c.UserID())
	if !ok || u.AccountID() != c.AccountID() {
		return comment.Comment{}, comment.ErrReferenceMissing
	}

	now := r.s.stamp()
	stored := comment.New(
		c.AccountID(),
		c.RequestID(),
		c.UserID(),
		c.Body(),
		comment.WithID(orNew(c.ID())),
		comment.WithActive(c.Active()),
		comment.WithCreatedAt(now),
		comment.WithUpdatedAt(now),
	)
	r.s.comments.Set(stored.ID(), stored)
	return stored, nil
}

func (r *inmemCommentRepository) Delete(_ context.Context, accountID, id uuid.UUID) error {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	c, ok := r.s.comments.Get(id)
	if !ok || c.AccountID() != accountID {
		return comment.ErrNotFound
	}
	r.s.comments.Delete(id)
	return nil
}

func orNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
