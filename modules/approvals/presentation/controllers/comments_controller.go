package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
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

type CommentsController struct {
	app        application.Application
	authz      *authz.Service
	auth       authn.Options
	loaders    *loaders.Dependencies
	finder     *services.EntityFinder
	creator    *services.CommentCreator
	destructor *services.CommentDestructor
	lister     *services.CommentLister
	basePath   string
}

func NewCommentsController(app application.Application, auth authn.Options) application.Controller {
	return &CommentsController{
		app:        app,
		authz:      app.Service(authz.Service{}).(*authz.Service),
		auth:       auth,
		loaders:    app.Service(loaders.Dependencies{}).(*loaders.Dependencies),
		finder:     app.Service(services.EntityFinder{}).(*services.EntityFinder),
		creator:    app.Service(services.CommentCreator{}).(*services.CommentCreator),
		destructor: app.Service(services.CommentDestructor{}).(*services.CommentDestructor),
		lister:     app.Service(services.CommentLister{}).(*services.CommentLister),
		basePath:   BasePath,
	}
}

func (c *CommentsController) Key() string {
	return c.basePath + "/comments"
}

func (c *CommentsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(apiMiddleware(c.auth, c.loaders)...)

	router.HandleFunc("/comments", c.List).Methods(http.MethodGet)
	router.HandleFunc("/comments/{id}", c.Destroy).Methods(http.MethodDelete)
	router.HandleFunc("/requests/{id}/comments", c.Create).Methods(http.MethodPost)
}

func (c *CommentsController) Create(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, commentsAuthzObject, string(permissions.ActionCreate)) {
		return
	}

	var dto dtos.CreateCommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid json", "")
		return
	}

	// An unknown request is an invalid argument here, not a missing resource.
	found, err := c.finder.Request(r.Context(), cl.account.ID(), pathID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !found.Success {
		writeAPIError(w, r, http.StatusUnprocessableEntity, codeValidation, found.Err.Message, "request_id")
		return
	}

	target := permissions.Target{Kind: permissions.KindComment, AccountID: found.Payload.AccountID(), OwnerID: cl.user.ID()}
	if !ensureAbility(w, r, cl.ability.Authorize(permissions.ActionCreate, target)) {
		return
	}

	res, err := c.creator.Create(r.Context(), &cl.account, &found.Payload, &cl.user, dto.Body)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}
	out := mappers.CommentToResponse(res.Payload)
	out.User = mappers.UserToResponse(cl.user)
	writeJSON(w, r, http.StatusCreated, out)
}

func (c *CommentsController) Destroy(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, commentsAuthzObject, string(permissions.ActionDestroy)) {
		return
	}

	found, err := c.finder.Comment(r.Context(), cl.account.ID(), pathID(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !found.Success {
		writeServiceError(w, r, found.Err, "id")
		return
	}
	if !ensureAbility(w, r, cl.ability.Authorize(permissions.ActionDestroy, permissions.ForComment(found.Payload))) {
		return
	}

	res, err := c.destructor.Destroy(r.Context(), &cl.account, &cl.user, found.Payload.ID())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, mappers.CommentToResponse(res.Payload))
}

func (c *CommentsController) List(w http.ResponseWriter, r *http.Request) {
	cl, ok := useCaller(w, r)
	if !ok || !ensureApprovalsAuthz(w, r, c.authz, cl, commentsAuthzObject, string(permissions.ActionRead)) {
		return
	}

	query, err := composables.UseQuery(&dtos.CommentListQuery{}, r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeBadRequest, "invalid query", "")
		return
	}

	var requestIDs []uuid.UUID
	if v := strings.TrimSpace(query.RequestID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, r, http.StatusOK, dtos.CommentListResponse{Items: []dtos.CommentResponse{}})
			return
		}
		requestIDs = append(requestIDs, id)
	}

	res, err := c.lister.List(r.Context(), &cl.ability, query.ActiveFilter(), requestIDs...)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !res.Success {
		writeServiceError(w, r, res.Err, "")
		return
	}
	items, err := c.withAuthors(r, res.Payload)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dtos.CommentListResponse{Items: items})
}

func (c *CommentsController) withAuthors(r *http.Request, comments []comment.Comment) ([]dtos.CommentResponse, error) {
	set, err := loaders.Use(r.Context())
	if err != nil {
		return nil, err
	}
	users, err := set.Users.LoadMany(r.Context(), commentAuthors(comments))
	if err != nil {
		return nil, err
	}
	out := mappers.CommentsToResponse(comments)
	for i, cm := range comments {
		if u, ok := users[cm.UserID()]; ok {
			out[i].User = mappers.UserToResponse(u)
		}
	}
	return out, nil
}
