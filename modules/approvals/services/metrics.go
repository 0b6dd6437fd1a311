package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpCreateRequest  = "create_request"
	OpSubmitRequest  = "submit_request"
	OpApproveRequest = "approve_request"
	OpRejectRequest  = "reject_request"
	OpCreateComment  = "create_comment"
	OpDestroyComment = "destroy_comment"
	OpListRequests   = "list_requests"
	OpListComments   = "list_comments"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "approvals_workflow_operations_total",
		Help: "Count of approval workflow operations by outcome.",
	},
	[]string{"operation", "result"},
)

func outcome(err error, serviceErr *ServiceError) string {
	if err != nil {
		return "error"
	}
	if serviceErr == nil {
		return "success"
	}
	switch serviceErr.Code {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusForbidden:
		return "forbidden"
	default:
		return "invalid"
	}
}

// observe counts the outcome of op and passes the result through.
func observe[T any](op string, res Result[T], err error) (Result[T], error) {
	operationsTotal.WithLabelValues(op, outcome(err, res.Err)).Inc()
	return res, err
}
