package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wI2L/jsondiff"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/pkg/composables"
)

type requestAudit struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Status         request.Status `json:"status"`
	RejectedReason string         `json:"rejected_reason,omitempty"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
	DecidedAt      *time.Time     `json:"decided_at,omitempty"`
}

func auditRequest(r request.Request) requestAudit {
	return requestAudit{
		ID:             r.ID(),
		Title:          r.Title(),
		Status:         r.Status(),
		RejectedReason: r.RejectedReason(),
		SubmittedAt:    r.SubmittedAt(),
		DecidedAt:      r.DecidedAt(),
	}
}

type commentAudit struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	UserID    uuid.UUID `json:"user_id"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
}

func auditComment(c comment.Comment) *commentAudit {
	return &commentAudit{
		ID:        c.ID(),
		RequestID: c.RequestID(),
		UserID:    c.UserID(),
		Body:      c.Body(),
		Active:    c.Active(),
	}
}

// audit logs the JSON patch between two snapshots of an entity.
func audit(ctx context.Context, op string, accountID, entityID uuid.UUID, before, after any) {
	logger := composables.UseLogger(ctx).WithFields(logrus.Fields{
		"operation":  op,
		"account_id": accountID,
		"entity_id":  entityID,
	})
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		logger.WithError(err).Warn("approvals: audit diff failed")
		return
	}
	logger.WithField("patch", patch.String()).Info("approvals: entity changed")
}
