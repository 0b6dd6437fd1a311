package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
)

const (
	msgRequestNotFound      = "Request not found"
	msgNotDraft             = "Request is not in draft status"
	msgNotPending           = "Request is not pending approval"
	msgModifiedConcurrently = "Request was modified concurrently"
)

// TransitionOption configures the approve and reject services.
type TransitionOption func(*transitionConfig)

type transitionConfig struct {
	strict bool
	now    func() time.Time
}

// WithStrictTransitions requires pending_approval before approve or reject.
func WithStrictTransitions(strict bool) TransitionOption {
	return func(c *transitionConfig) {
		c.strict = strict
	}
}

// WithClock overrides the timestamp source for submitted_at and decided_at.
func WithClock(now func() time.Time) TransitionOption {
	return func(c *transitionConfig) {
		c.now = now
	}
}

func newTransitionConfig(opts []TransitionOption) transitionConfig {
	cfg := transitionConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// transition looks the request up inside acc, lets check veto it, then swaps its status
// from the observed one. staleMsg is reported when the swap loses a race.
func transition(
	ctx context.Context,
	tx Transactor,
	requests request.Repository,
	accountID, id uuid.UUID,
	check func(request.Request) *Result[request.Request],
	apply func(request.Request) request.Request,
	staleMsg string,
) (Result[request.Request], request.Request, error) {
	var (
		res    Result[request.Request]
		before request.Request
	)
	err := tx.InTx(ctx, func(txCtx context.Context) error {
		current, err := requests.GetByID(txCtx, accountID, id)
		if errors.Is(err, request.ErrNotFound) {
			res = notFound[request.Request](msgRequestNotFound)
			return nil
		}
		if err != nil {
			return err
		}
		if veto := check(current); veto != nil {
			res = *veto
			return nil
		}

		updated, err := requests.Transition(txCtx, accountID, id, current.Status(), apply)
		switch {
		case errors.Is(err, request.ErrStaleStatus):
			res = unprocessable[request.Request](staleMsg)
			return nil
		case errors.Is(err, request.ErrNotFound):
			res = notFound[request.Request](msgRequestNotFound)
			return nil
		case err != nil:
			return err
		}
		before = current
		res = success(updated)
		return nil
	})
	if err != nil {
		return Result[request.Request]{}, request.Request{}, err
	}
	return res, before, nil
}

type RequestSubmitter struct {
	tx       Transactor
	requests request.Repository
	cfg      transitionConfig
}

func NewRequestSubmitter(tx Transactor, requests request.Repository, opts ...TransitionOption) *RequestSubmitter {
	return &RequestSubmitter{tx: tx, requests: requests, cfg: newTransitionConfig(opts)}
}

// Submit moves a draft request to pending_approval.
func (s *RequestSubmitter) Submit(ctx context.Context, acc *account.Account, id uuid.UUID) (Result[request.Request], error) {
	if acc == nil {
		return observe(OpSubmitRequest, missingParam[request.Request]("account"), nil)
	}
	res, before, err := transition(ctx, s.tx, s.requests, acc.ID(), id,
		func(r request.Request) *Result[request.Request] {
			if r.Status() != request.StatusDraft {
				veto := unprocessable[request.Request](msgNotDraft)
				return &veto
			}
			return nil
		},
		func(r request.Request) request.Request { return r.Submit(s.cfg.now()) },
		msgNotDraft,
	)
	if err == nil && res.Success {
		audit(ctx, OpSubmitRequest, acc.ID(), id, auditRequest(before), auditRequest(res.Payload))
	}
	return observe(OpSubmitRequest, res, err)
}

type RequestApprover struct {
	tx       Transactor
	requests request.Repository
	cfg      transitionConfig
}

func NewRequestApprover(tx Transactor, requests request.Repository, opts ...TransitionOption) *RequestApprover {
	return &RequestApprover{tx: tx, requests: requests, cfg: newTransitionConfig(opts)}
}

// Approve marks the request approved. Only admins may approve. Without strict transitions
// any source status is accepted.
func (s *RequestApprover) Approve(
	ctx context.Context,
	acc *account.Account,
	u *user.User,
	id uuid.UUID,
) (Result[request.Request], error) {
	switch {
	case acc == nil:
		return observe(OpApproveRequest, missingParam[request.Request]("account"), nil)
	case u == nil:
		return observe(OpApproveRequest, missingParam[request.Request]("user"), nil)
	}
	res, before, err := transition(ctx, s.tx, s.requests, acc.ID(), id,
		func(r request.Request) *Result[request.Request] {
			if !u.IsAdmin() || u.AccountID() != acc.ID() {
				veto := forbidden[request.Request]("Only admin can approve")
				return &veto
			}
			if s.cfg.strict && r.Status() != request.StatusPendingApproval {
				veto := unprocessable[request.Request](msgNotPending)
				return &veto
			}
			return nil
		},
		func(r request.Request) request.Request { return r.Approve(s.cfg.now()) },
		msgModifiedConcurrently,
	)
	if err == nil && res.Success {
		audit(ctx, OpApproveRequest, acc.ID(), id, auditRequest(before), auditRequest(res.Payload))
	}
	return observe(OpApproveRequest, res, err)
}

type RequestRejector struct {
	tx       Transactor
	requests request.Repository
	cfg      transitionConfig
}

func NewRequestRejector(tx Transactor, requests request.Repository, opts ...TransitionOption) *RequestRejector {
	return &RequestRejector{tx: tx, requests: requests, cfg: newTransitionConfig(opts)}
}

// Reject marks the request rejected with a mandatory reason.
func (s *RequestRejector) Reject(
	ctx context.Context,
	acc *account.Account,
	id uuid.UUID,
	rejectedReason string,
) (Result[request.Request], error) {
	if acc == nil {
		return observe(OpRejectRequest, missingParam[request.Request]("account"), nil)
	}
	reason := strings.TrimSpace(rejectedReason)
	res, before, err := transition(ctx, s.tx, s.requests, acc.ID(), id,
		func(r request.Request) *Result[request.Request] {
			if reason == "" {
				veto := missingParam[request.Request]("rejected_reason")
				return &veto
			}
			if s.cfg.strict && r.Status() != request.StatusPendingApproval {
				veto := unprocessable[request.Request](msgNotPending)
				return &veto
			}
			return nil
		},
		func(r request.Request) request.Request { return r.Reject(reason, s.cfg.now()) },
		msgModifiedConcurrently,
	)
	if err == nil && res.Success {
		audit(ctx, OpRejectRequest, acc.ID(), id, auditRequest(before), auditRequest(res.Payload))
	}
	return observe(OpRejectRequest, res, err)
}
