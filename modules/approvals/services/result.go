package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jacksonlee411/approvals/pkg/serrors"
)

// ServiceError carries a business failure back to the caller as data.
// Code follows HTTP semantics: 403, 404 or 422.
type ServiceError struct {
	Message string
	Code    int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Result is what every workflow and query service returns. The accompanying Go error is
// reserved for internal faults.
type Result[T any] struct {
	Success bool
	Payload T
	Err     *ServiceError
}

func success[T any](payload T) Result[T] {
	return Result[T]{Success: true, Payload: payload}
}

func failure[T any](code int, message string) Result[T] {
	return Result[T]{Err: &ServiceError{Message: message, Code: code}}
}

func notFound[T any](message string) Result[T] {
	return failure[T](http.StatusNotFound, message)
}

func forbidden[T any](message string) Result[T] {
	return failure[T](http.StatusForbidden, message)
}

func unprocessable[T any](message string) Result[T] {
	return failure[T](http.StatusUnprocessableEntity, message)
}

func missingParam[T any](name string) Result[T] {
	return unprocessable[T]("Missing required param: " + name)
}

// invalid turns entity validation failures into a 422 carrying every field message.
// Anything else is an internal fault.
func invalid[T any](err error) (Result[T], error) {
	var invalidErr *serrors.InvalidError
	if errors.As(err, &invalidErr) {
		return unprocessable[T](invalidErr.Error()), nil
	}
	return Result[T]{}, err
}

// Transactor runs fn as one unit of work. Repositories resolve the transaction from ctx.
type Transactor interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}
