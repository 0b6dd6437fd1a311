package controllers

import (
	"net/http"
	"strings"

	"github.com/jacksonlee411/approvals/modules/approvals/services"
	"github.com/jacksonlee411/approvals/pkg/composables"
	"github.com/jacksonlee411/approvals/pkg/httpapi"
)

const (
	codeNotFound        = "NOT_FOUND"
	codeForbidden       = "FORBIDDEN"
	codeValidation      = "VALIDATION_ERROR"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeBadRequest      = "BAD_REQUEST"
	codeInternal        = "INTERNAL_SERVER_ERROR"

	missingParamPrefix = "Missing required param: "
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to write response")
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message, attribute string) {
	requestID, _ := composables.UseRequestID(r.Context())
	if err := httpapi.NewError(code, message, requestID, attribute).Write(w, status); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to write error response")
	}
}

// writeServiceError renders a business failure. attribute overrides the one derived from
// the message.
func writeServiceError(w http.ResponseWriter, r *http.Request, serviceErr *services.ServiceError, attribute string) {
	if attribute == "" {
		attribute = attributeOf(serviceErr.Message)
	}
	writeAPIError(w, r, serviceErr.Code, codeFor(serviceErr.Code), serviceErr.Message, attribute)
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	composables.UseLogger(r.Context()).WithError(err).Error("approvals api: internal error")
	writeAPIError(w, r, http.StatusInternalServerError, codeInternal, "internal server error", "")
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusForbidden:
		return codeForbidden
	case http.StatusUnprocessableEntity:
		return codeValidation
	case http.StatusUnauthorized:
		return codeUnauthenticated
	case http.StatusBadRequest:
		return codeBadRequest
	default:
		return codeInternal
	}
}

// attributeOf names the parameter a "Missing required param" message refers to.
func attributeOf(message string) string {
	if rest, ok := strings.CutPrefix(message, missingParamPrefix); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}
