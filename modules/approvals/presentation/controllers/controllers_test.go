package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jacksonlee411/approvals/modules/approvals"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/controllers"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/controllers/dtos"
	"github.com/jacksonlee411/approvals/pkg/application"
	"github.com/jacksonlee411/approvals/pkg/authz"
	"github.com/jacksonlee411/approvals/pkg/httpapi"
	"github.com/jacksonlee411/approvals/pkg/middleware"
)

type tenant struct {
	account  account.Account
	viewer   user.User
	editor   user.User
	admin    user.User
	hardware category.Category
}

type apiFixture struct {
	t      *testing.T
	store  *persistence.InmemStore
	router *mux.Router
	a      tenant
	b      tenant
}

func newAPIFixture(t *testing.T, mode authz.Mode) *apiFixture {
	t.Helper()
	f := &apiFixture{t: t, store: persistence.NewInmemStore()}
	f.a = f.seedTenant("Account A", "94.984.296/0001-76")
	f.b = f.seedTenant("Account B", "11.222.333/0001-81")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app := application.New(&application.ApplicationOptions{Logger: logger})

	svc, err := authz.NewService(authz.Config{FlagMode: mode, Logger: logger})
	require.NoError(t, err)
	app.RegisterServices(svc)

	module := approvals.NewModule(&approvals.ModuleOptions{Repositories: f.store.Repositories()})
	require.NoError(t, application.Load(app, module))

	f.router = mux.NewRouter()
	f.router.Use(middleware.WithLogger(logger, middleware.DefaultLoggerOptions()))
	for _, c := range app.Controllers() {
		c.Register(f.router)
	}
	return f
}

func (f *apiFixture) seedTenant(name, taxID string) tenant {
	f.t.Helper()
	ctx := context.Background()
	acc, err := f.store.Accounts().Create(ctx, account.New(name, taxID))
	require.NoError(f.t, err)
	mkUser := func(role user.Role) user.User {
		u, err := f.store.Users().Create(ctx, user.New(acc.ID(), string(role), string(role)+"@example.com", role))
		require.NoError(f.t, err)
		return u
	}
	cat, err := f.store.Categories().Create(ctx, category.New(acc.ID(), "Hardware"))
	require.NoError(f.t, err)
	return tenant{
		account:  acc,
		viewer:   mkUser(user.RoleViewer),
		editor:   mkUser(user.RoleEditor),
		admin:    mkUser(user.RoleAdmin),
		hardware: cat,
	}
}

func (f *apiFixture) do(as user.User, method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/approvals/api"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as.ID() != uuid.Nil {
		req.Header.Set("X-Account-Id", as.AccountID().String())
		req.Header.Set("X-User-Id", as.ID().String())
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message, attribute string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decode[httpapi.ErrorEnvelope](t, rec)
	assert.Equal(t, code, env.Code)
	assert.Equal(t, message, env.Message)
	assert.Equal(t, attribute, env.Meta["attribute"])
	assert.NotEmpty(t, env.Meta["request_id"])
}

func (f *apiFixture) createRequest(tn tenant, title string) dtos.RequestResponse {
	f.t.Helper()
	rec := f.do(tn.editor, http.MethodPost, "/requests", dtos.CreateRequestDTO{
		Title:      title,
		CategoryID: tn.hardware.ID().String(),
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dtos.RequestResponse](f.t, rec)
}

func TestAPI_RejectsUnauthenticatedCallers(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)

	rec := f.do(user.User{}, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[httpapi.ErrorEnvelope](t, rec).Code)

	stranger := user.New(f.a.account.ID(), "ghost", "ghost@example.com", user.RoleAdmin)
	rec = f.do(stranger, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_CreateRequest(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)

	created := f.createRequest(f.a, "Laptop")
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, f.a.editor.ID().String(), created.UserID)

	t.Run("viewer is forbidden", func(t *testing.T) {
		rec := f.do(f.a.viewer, http.MethodPost, "/requests", dtos.CreateRequestDTO{Title: "x", CategoryID: f.a.hardware.ID().String()})
		requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN", "permission denied", "")
	})

	t.Run("category of another account is missing", func(t *testing.T) {
		rec := f.do(f.a.editor, http.MethodPost, "/requests", dtos.CreateRequestDTO{Title: "x", CategoryID: f.b.hardware.ID().String()})
		requireAPIError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing required param: category", "category")
	})

	t.Run("blank title", func(t *testing.T) {
		rec := f.do(f.a.editor, http.MethodPost, "/requests", dtos.CreateRequestDTO{CategoryID: f.a.hardware.ID().String()})
		requireAPIError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing required param: title", "title")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/approvals/api/requests", bytes.NewBufferString("{"))
		req.Header.Set("X-Account-Id", f.a.account.ID().String())
		req.Header.Set("X-User-Id", f.a.editor.ID().String())
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_Workflow(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	created := f.createRequest(f.a, "Laptop")

	rec := f.do(f.a.viewer, http.MethodPost, "/requests/"+created.ID+"/submit", nil)
	requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN", "permission denied", "")

	rec = f.do(f.a.editor, http.MethodPost, "/requests/"+created.ID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	submitted := decode[dtos.RequestResponse](t, rec)
	assert.Equal(t, "pending_approval", submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	rec = f.do(f.a.editor, http.MethodPost, "/requests/"+created.ID+"/submit", nil)
	requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN", "You are not authorized to access this page.", "")

	rec = f.do(f.a.admin, http.MethodPost, "/requests/"+created.ID+"/reject", dtos.RejectRequestDTO{})
	requireAPIError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing required param: rejected_reason", "rejected_reason")

	rec = f.do(f.a.admin, http.MethodPost, "/requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[dtos.RequestResponse](t, rec).Status)
}

func TestAPI_RequestsOfOtherAccountsAreNotFound(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	foreign := f.createRequest(f.b, "Foreign")

	rec := f.do(f.a.admin, http.MethodPost, "/requests/"+foreign.ID+"/approve", nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND", "Request not found", "id")

	rec = f.do(f.a.admin, http.MethodGet, "/requests/"+foreign.ID, nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND", "Request not found", "id")

	rec = f.do(f.a.admin, http.MethodGet, "/requests/not-a-uuid", nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND", "Request not found", "id")
}

func TestAPI_ShowIncludesAssociations(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	created := f.createRequest(f.a, "Laptop")

	rec := f.do(f.a.editor, http.MethodPost, "/requests/"+created.ID+"/comments", dtos.CreateCommentDTO{Body: "please"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(f.a.viewer, http.MethodGet, "/requests/"+created.ID+"?comments_active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detail := decode[dtos.RequestResponse](t, rec)
	require.NotNil(t, detail.User)
	assert.Equal(t, f.a.editor.Email(), detail.User.Email)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "Hardware", detail.Category.Name)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "please", detail.Comments[0].Body)
	require.NotNil(t, detail.Comments[0].User)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests/"+created.ID+"?comments_active=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dtos.RequestResponse](t, rec).Comments)
}

func TestAPI_ListRequests(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	first := f.createRequest(f.a, "First")
	f.createRequest(f.a, "Second")
	f.createRequest(f.b, "Other account")

	rec := f.do(f.a.editor, http.MethodPost, "/requests/"+first.ID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[dtos.RequestListResponse](t, rec)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Second", page.Items[0].Title)
	require.NotNil(t, page.Items[0].Category)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests?status=pending_approval", nil)
	page = decode[dtos.RequestListResponse](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests?status=bogus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dtos.RequestListResponse](t, rec).Items)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests?account_id="+f.b.account.ID().String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dtos.RequestListResponse](t, rec).Items)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests?limit=-1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_ListRequests_StatusAndCategoryIntersect(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	software, err := f.store.Categories().Create(context.Background(), category.New(f.a.account.ID(), "Software"))
	require.NoError(t, err)

	wanted := f.createRequest(f.a, "Draft hardware")
	pending := f.createRequest(f.a, "Pending hardware")
	rec := f.do(f.a.editor, http.MethodPost, "/requests/"+pending.ID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(f.a.editor, http.MethodPost, "/requests", dtos.CreateRequestDTO{
		Title:      "Draft software",
		CategoryID: software.ID().String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(f.a.viewer, http.MethodGet, "/requests?status=draft&category_id="+f.a.hardware.ID().String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[dtos.RequestListResponse](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, wanted.ID, page.Items[0].ID)
	assert.EqualValues(t, 1, page.Total)
}

func TestAPI_ListRequests_AppliesDefaultPageSize(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	for i := range controllers.DefaultPageSize + 5 {
		f.createRequest(f.a, fmt.Sprintf("Request %02d", i))
	}

	rec := f.do(f.a.viewer, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[dtos.RequestListResponse](t, rec)
	assert.Len(t, page.Items, controllers.DefaultPageSize)
	assert.Equal(t, controllers.DefaultPageSize, page.Limit)
	assert.EqualValues(t, controllers.DefaultPageSize+5, page.Total)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests?limit=1000&offset=25", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = decode[dtos.RequestListResponse](t, rec)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, controllers.DefaultMaxPageSize, page.Limit)

	rec = f.do(f.a.viewer, http.MethodGet, "/requests:export?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, strconv.Itoa(controllers.DefaultPageSize+5), rec.Header().Get("X-Total-Count"))
}

func TestAPI_ExportRequests(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	f.createRequest(f.a, "Laptop")

	rec := f.do(f.a.viewer, http.MethodGet, "/requests:export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = book.Close() }()
	rows, err := book.GetRows("Requests")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Laptop", rows[1][1])
}

func TestAPI_Comments(t *testing.T) {
	f := newAPIFixture(t, authz.ModeEnforce)
	created := f.createRequest(f.a, "Laptop")

	rec := f.do(f.a.viewer, http.MethodPost, "/requests/"+created.ID+"/comments", dtos.CreateCommentDTO{Body: "hi"})
	requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN", "permission denied", "")

	rec = f.do(f.a.editor, http.MethodPost, "/requests/"+uuid.NewString()+"/comments", dtos.CreateCommentDTO{Body: "hi"})
	requireAPIError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request not found", "request_id")

	rec = f.do(f.a.editor, http.MethodPost, "/requests/"+created.ID+"/comments", dtos.CreateCommentDTO{Body: "hi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	own := decode[dtos.CommentResponse](t, rec)
	assert.True(t, own.Active)

	rec = f.do(f.a.viewer, http.MethodGet, "/comments?active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dtos.CommentListResponse](t, rec)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].User)
	assert.Equal(t, f.a.editor.Name(), list.Items[0].User.Name)

	rec = f.do(f.b.admin, http.MethodGet, "/comments", nil)
	assert.Empty(t, decode[dtos.CommentListResponse](t, rec).Items)

	// The route gate only lets admins destroy comments, authors included.
	rec = f.do(f.a.editor, http.MethodDelete, "/comments/"+own.ID, nil)
	requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN", "permission denied", "")

	rec = f.do(f.b.admin, http.MethodDelete, "/comments/"+own.ID, nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND", "Comment not found", "id")

	rec = f.do(f.a.admin, http.MethodDelete, "/comments/"+own.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(f.a.viewer, http.MethodGet, "/comments", nil)
	assert.Empty(t, decode[dtos.CommentListResponse](t, rec).Items)
}

func TestAPI_ShadowModeFallsBackToAbility(t *testing.T) {
	f := newAPIFixture(t, authz.ModeShadow)

	rec := f.do(f.a.viewer, http.MethodPost, "/requests", dtos.CreateRequestDTO{Title: "x", CategoryID: f.a.hardware.ID().String()})
	requireAPIError(t, rec, http.StatusForbidden, "FORBIDDEN", "You are not authorized to access this page.", "")
}
