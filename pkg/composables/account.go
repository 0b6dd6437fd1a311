package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/pkg/constants"
)

var ErrNoAccount = errors.New("no account found in context")

func WithAccountID(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.AccountIDKey, accountID)
}

func UseAccountID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.AccountIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoAccount
	}
	return id, nil
}
