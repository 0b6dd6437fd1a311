package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/authn"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/controllers/dtos"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/loaders"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/mappers"
	"github.com/jacksonlee411/approvals/modules/approvals/services"
	"github.com/jacksonlee411/approvals/pkg/application"
	"github.com/jacksonlee411/approvals/pkg/authz"
	"github.com/jacksonlee411/approvals/pkg/composables"
)

const (
	BasePath = "/approvals/api"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type RequestsController struct {
	app       application.Application
	authz     *authz.Service
	auth      authn.Options
	loaders   *loaders.Dependencies
	finder    *services.EntityFinder
	creator   *services.RequestCreator
	submitter *services.RequestSubmitter
	approver  *services.RequestApprover
	rejector  *services.RequestRejector
	lister    *services.RequestLister
	exporter  *services.RequestExporter
	paging    Paging
	basePath  string
}

func NewRequestsController(app application.Application, auth authn.Options, paging Paging) application.Controller {
	return &RequestsController{
		app:       app,
		authz:     app.Service(authz.Service{}).(*authz.Service),
		auth:      auth,
		loaders:   app.Service(loaders.Dependencies{}).(*loaders.Dependencies),
		finder:    app.Service(services.EntityFinder{}).(*services.EntityFinder),
		creator:   app.Service(services.RequestCreator{}).(*services.RequestCreator),
		submitter: app.Service(services.RequestSubmitter{}).(*services.RequestSubmitter),
		approver:  app.Service(services.RequestApprover{}).(*services.RequestApprover),
		rejector:  app.Service(services.RequestRejector{}).(*services.RequestRejector),
		lister:    app.Service(services.RequestLister{}).(*services.RequestLister),
		exporter:  app.Service(services.RequestExporter{}).(*services.RequestExporter),
		paging:    paging.withDefaults(),
		basePath:  BasePath,
	}
}

func (c *RequestsController) Key() string {
	return c.basePath + "/requests"
}

func (c *RequestsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(apiMiddleware(c.auth, c.loaders)...)

	router.HandleFunc("/requests", c.List).Methods(http.MethodGet)
	router.HandleFunc("/requests", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/requests:export", c.Export).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id}", c.Show).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id}/submit", c.Submit).Methods(http.MethodPost)
	router.HandleFunc("/requests/{id}/approve", c.Approve).Methods(http.MethodPost)
	router.HandleFunc("/requests/{id}/reject", c.Reject).Methods(http.MethodPost)
}

func apiMiddleware(auth authn.Options, deps *loaders.Dependencies) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		authn.Authenticate(auth),
		authn.ProvideAbility(),
		loaders.Middleware(*deps),
	}
}

func pathID(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil
	}
	return id
}

// findRequest resolves the {id} path parameter inside the caller's account.
func (c *RequestsController) findRequest(w http.ResponseWriter, r *http.Request, cl caller) (request.Request, bool) {
	res, err := c.finder.Request(r.Context(), cl.account.ID(), pathID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return request.Request{}, false
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "id")
		return request.Request{}, false
	}
	return res.Payload, true
}

func (c *RequestsController) Create(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionCreate)) {
		return
	}
	if !ensureAbility(w, r, cl.ability.AuthorizeKind(permissions.ActionCreate, permissions.KindRequest)) {
		return
	}

	var dto dtos.CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid json", "")
		return
	}

	categoryID, _ := uuid.Parse(strings.TrimSpace(dto.CategoryID))
	cat, err := c.finder.Category(r.Context(), cl.account.ID(), categoryID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	res, err := c.creator.Create(r.Context(), &cl.account, &cl.user, dto.Title, cat, dto.Description)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, mappers.RequestToResponse(res.Payload))
}

func (c *RequestsController) Submit(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionSubmit)) {
		return
	}
	found, ok := c.findRequest(w, r, cl)
	if !ok || !ensureAbility(w, r, cl.ability.Authorize(permissions.ActionSubmit, permissions.ForRequest(found))) {
		return
	}

	res, err := c.submitter.Submit(r.Context(), &cl.account, found.ID())
	c.writeTransition(w, r, res, err)
}

func (c *RequestsController) Approve(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionApprove)) {
		return
	}
	found, ok := c.findRequest(w, r, cl)
	if !ok || !ensureAbility(w, r, cl.ability.Authorize(permissions.ActionApprove, permissions.ForRequest(found))) {
		return
	}

	res, err := c.approver.Approve(r.Context(), &cl.account, &cl.user, found.ID())
	c.writeTransition(w, r, res, err)
}

func (c *RequestsController) Reject(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionReject)) {
		return
	}

	var dto dtos.RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid json", "")
		return
	}

	found, ok := c.findRequest(w, r, cl)
	if !ok || !ensureAbility(w, r, cl.ability.Authorize(permissions.ActionReject, permissions.ForRequest(found))) {
		return
	}

	res, err := c.rejector.Reject(r.Context(), &cl.account, found.ID(), dto.RejectedReason)
	c.writeTransition(w, r, res, err)
}

func (c *RequestsController) writeTransition(w http.ResponseWriter, r *http.Request, res services.Result[request.Request], err error) {
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, mappers.RequestToResponse(res.Payload))
}

func (c *RequestsController) Show(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionRead)) {
		return
	}
	found, ok := c.findRequest(w, r, cl)
	if !ok || !ensureAbility(w, r, cl.ability.Authorize(permissions.ActionRead, permissions.ForRequest(found))) {
		return
	}

	query, err := composables.UseQuery(&dtos.RequestDetailQuery{}, r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid query", "")
		return
	}

	set, err := loaders.Use(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	var (
		owner    user.User
		hasOwner bool
		cat      category.Category
		hasCat   bool
		comments []comment.Comment
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		owner, hasOwner, err = set.Users.Load(gctx, found.UserID())
		return err
	})
	g.Go(func() error {
		var err error
		cat, hasCat, err = set.Categories.Load(gctx, found.CategoryID())
		return err
	})
	g.Go(func() error {
		var err error
		comments, _, err = set.CommentsByRequest(query.ActiveFilter()).Load(gctx, found.ID())
		return err
	})
	if err := g.Wait(); err != nil {
		writeInternalError(w, r, err)
		return
	}

	commentUsers, err := set.Users.LoadMany(r.Context(), commentAuthors(comments))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := mappers.RequestToResponse(found)
	if hasOwner {
		out.User = mappers.UserToResponse(owner)
	}
	if hasCat {
		out.Category = mappers.CategoryToResponse(cat)
	}
	out.Comments = make([]dtos.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		item := mappers.CommentToResponse(cm)
		if u, ok := commentUsers[cm.UserID()]; ok {
			item.User = mappers.UserToResponse(u)
		}
		out.Comments = append(out.Comments, item)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func commentAuthors(comments []comment.Comment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.UserID())
	}
	return ids
}

// listFilter decodes the list query. The second result is false when the query can
// match nothing, such as an unknown status.
func (c *RequestsController) listFilter(w http.ResponseWriter, r *http.Request, cl caller) (services.RequestFilter, bool, bool) {
	query, err := composables.UseQuery(&dtos.RequestListQuery{}, r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid query", "")
		return services.RequestFilter{}, false, false
	}
	if err := query.Ok(); err != nil {
		writeAPIError(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), "")
		return services.RequestFilter{}, false, false
	}

	filter := services.RequestFilter{
		AccountID: query.AccountUUID(cl.account.ID()),
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	matchable := true
	if v := strings.TrimSpace(query.Status); v != "" {
		status, err := request.ParseStatus(v)
		if err != nil {
			matchable = false
		}
		filter.Status = status
	}
	if v := strings.TrimSpace(query.CategoryID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			matchable = false
		}
		filter.CategoryID = id
	}
	return filter, matchable, true
}

func (c *RequestsController) List(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionRead)) {
		return
	}
	filter, matchable, ok := c.listFilter(w, r, cl)
	if !ok {
		return
	}
	filter.Limit, filter.Offset = c.paging.bound(filter.Limit, filter.Offset)
	if !matchable {
		writeJSON(w, r, http.StatusOK, dtos.RequestListResponse{Items: []dtos.RequestResponse{}, Limit: filter.Limit, Offset: filter.Offset})
		return
	}

	res, err := c.lister.List(r.Context(), &cl.ability, filter)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}

	items, err := c.withAssociations(r.Context(), res.Payload.Requests)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dtos.RequestListResponse{
		Items:  items,
		Total:  res.Payload.Total,
		Limit:  res.Payload.Limit,
		Offset: res.Payload.Offset,
	})
}

// withAssociations resolves owners and categories of a page with one batch each.
func (c *RequestsController) withAssociations(ctx context.Context, page []request.Request) ([]dtos.RequestResponse, error) {
	set, err := loaders.Use(ctx)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, 0, len(page))
	categoryIDs := make([]uuid.UUID, 0, len(page))
	for _, req := range page {
		userIDs = append(userIDs, req.UserID())
		categoryIDs = append(categoryIDs, req.CategoryID())
	}
	users, err := set.Users.LoadMany(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	categories, err := set.Categories.LoadMany(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.RequestResponse, 0, len(page))
	for _, req := range page {
		item := mappers.RequestToResponse(req)
		if u, ok := users[req.UserID()]; ok {
			item.User = mappers.UserToResponse(u)
		}
		if cat, ok := categories[req.CategoryID()]; ok {
			item.Category = mappers.CategoryToResponse(cat)
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *RequestsController) Export(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, requestsAuthzObject, string(permissions.ActionRead)) {
		return
	}
	filter, matchable, ok := c.listFilter(w, r, cl)
	if !ok {
		return
	}
	if !matchable {
		// Nothing can match; export the empty sheet through an impossible account.
		filter.AccountID = uuid.New()
	}

	var buf bytes.Buffer
	res, err := c.exporter.Export(r.Context(), &cl.ability, filter, &buf)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="requests.xlsx"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(res.Payload))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to write export")
	}
}
