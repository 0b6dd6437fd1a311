package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
)

func requestRow(id, accountID uuid.UUID, status request.Status, createdAt time.Time) []any {
	description := "two monitors"
	return []any{
		id, accountID, uuid.New(), uuid.New(), "Notebook", &description, string(status),
		(*string)(nil), (*time.Time)(nil), (*time.Time)(nil), createdAt, createdAt,
	}
}

func TestRequestRepository_List_AppliesFiltersAndPaging(t *testing.T) {
	accountID := uuid.New()
	categoryID := uuid.New()
	now := time.Now()
	id := uuid.New()

	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "FROM requests")
			require.Contains(t, sql, "WHERE account_id = $1 AND status = $2 AND category_id = $3")
			require.Contains(t, sql, "ORDER BY created_at DESC, id")
			require.Contains(t, sql, "LIMIT 10 OFFSET 20")
			require.Equal(t, []any{accountID, "pending_approval", categoryID}, args)
			return &stubRows{data: [][]any{requestRow(id, accountID, request.StatusPendingApproval, now)}}, nil
		},
	}

	result, err := NewRequestRepository().List(withStubTx(tx), &request.FindParams{
		AccountID:  accountID,
		Status:     request.StatusPendingApproval,
		CategoryID: categoryID,
		Limit:      10,
		Offset:     20,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, id, result[0].ID())
	require.Equal(t, "two monitors", result[0].Description())
	require.Empty(t, result[0].RejectedReason())
	require.Nil(t, result[0].SubmittedAt())
}

func TestRequestRepository_List_WithoutLimitIsUnbounded(t *testing.T) {
	accountID := uuid.New()

	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.NotContains(t, sql, "LIMIT")
			require.NotContains(t, sql, "OFFSET")
			require.Equal(t, []any{accountID}, args)
			return &stubRows{}, nil
		},
	}

	result, err := NewRequestRepository().List(withStubTx(tx), &request.FindParams{AccountID: accountID})
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestRequestRepository_Count_UsesAccountFilter(t *testing.T) {
	accountID := uuid.New()
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "SELECT COUNT(*) FROM requests WHERE account_id = $1")
			require.Equal(t, []any{accountID}, args)
			return stubRow{values: []any{int64(4)}}
		},
	}

	count, err := NewRequestRepository().Count(withStubTx(tx), &request.FindParams{AccountID: accountID})
	require.NoError(t, err)
	require.Equal(t, int64(4), count)
}

func TestRequestRepository_GetByID_MapsNoRows(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return stubRow{err: pgx.ErrNoRows}
		},
	}

	_, err := NewRequestRepository().GetByID(withStubTx(tx), uuid.New(), uuid.New())
	require.ErrorIs(t, err, request.ErrNotFound)
}

func TestRequestRepository_Create_MapsForeignKeyViolation(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO requests")
			return stubRow{err: &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "requests_category_fk"}}
		},
	}

	req := request.New(uuid.New(), uuid.New(), uuid.New(), "Notebook")
	_, err := NewRequestRepository().Create(withStubTx(tx), req)
	require.ErrorIs(t, err, request.ErrReferenceMissing)
}

func TestRequestRepository_Transition_GuardsOnStatus(t *testing.T) {
	accountID := uuid.New()
	id := uuid.New()
	created := time.Now().Add(-time.Hour)

	t.Run("updates when status matches", func(t *testing.T) {
		calls := 0
		tx := &stubTx{
			queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				calls++
				if calls == 1 {
					return stubRow{values: requestRow(id, accountID, request.StatusDraft, created)}
				}
				require.Contains(t, sql, "UPDATE requests")
				require.Contains(t, sql, "status = $3")
				require.Equal(t, "draft", args[2])
				require.Equal(t, "pending_approval", args[3])
				row := requestRow(id, accountID, request.StatusPendingApproval, created)
				submitted := args[5].(*time.Time)
				row[8] = submitted
				return stubRow{values: row}
			},
		}

		got, err := NewRequestRepository().Transition(withStubTx(tx), accountID, id, request.StatusDraft,
			func(r request.Request) request.Request { return r.Submit(time.Now()) })
		require.NoError(t, err)
		require.Equal(t, 2, calls)
		require.Equal(t, request.StatusPendingApproval, got.Status())
		require.NotNil(t, got.SubmittedAt())
	})

	t.Run("stale when stored status differs", func(t *testing.T) {
		tx := &stubTx{
			queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				require.NotContains(t, sql, "UPDATE")
				return stubRow{values: requestRow(id, accountID, request.StatusApproved, created)}
			},
		}

		_, err := NewRequestRepository().Transition(withStubTx(tx), accountID, id, request.StatusPendingApproval,
			func(r request.Request) request.Request { return r.Approve(time.Now()) })
		require.ErrorIs(t, err, request.ErrStaleStatus)
	})

	t.Run("stale when the guarded update matches nothing", func(t *testing.T) {
		calls := 0
		tx := &stubTx{
			queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				calls++
				if calls == 1 {
					return stubRow{values: requestRow(id, accountID, request.StatusPendingApproval, created)}
				}
				return stubRow{err: pgx.ErrNoRows}
			},
		}

		_, err := NewRequestRepository().Transition(withStubTx(tx), accountID, id, request.StatusPendingApproval,
			func(r request.Request) request.Request { return r.Reject("budget", time.Now()) })
		require.ErrorIs(t, err, request.ErrStaleStatus)
	})
}

func TestCommentRepository_List_FiltersActiveAndRequests(t *testing.T) {
	accountID := uuid.New()
	requestIDs := []uuid.UUID{uuid.New(), uuid.New()}
	active := true
	now := time.Now()

	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "active = $2")
			require.Contains(t, sql, "request_id = ANY($3)")
			require.Contains(t, sql, "ORDER BY created_at, id")
			require.Equal(t, accountID, args[0])
			require.Equal(t, true, args[1])
			require.Equal(t, requestIDs, args[2])
			return &stubRows{data: [][]any{
				{uuid.New(), accountID, requestIDs[0], uuid.New(), "looks fine", true, now, now},
			}}, nil
		},
	}

	result, err := NewCommentRepository().List(withStubTx(tx), &comment.FindParams{
		AccountID:  accountID,
		Active:     &active,
		RequestIDs: requestIDs,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "looks fine", result[0].Body())
	require.Equal(t, requestIDs[0], result[0].RequestID())
}

func TestCommentRepository_Delete_ReportsMissingRow(t *testing.T) {
	tx := &stubTx{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			require.Contains(t, sql, "DELETE FROM comments")
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	require.ErrorIs(t, NewCommentRepository().Delete(withStubTx(tx), uuid.New(), uuid.New()), comment.ErrNotFound)

	tx.execFunc = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	require.NoError(t, NewCommentRepository().Delete(withStubTx(tx), uuid.New(), uuid.New()))
}

func TestUserRepository_Create_MapsUniqueViolation(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO users")
			require.Equal(t, "ana@example.com", args[3])
			return stubRow{err: &pgconn.PgError{Code: pgUniqueViolation}}
		},
	}

	u := user.New(uuid.New(), "Ana", "Ana@Example.com", user.RoleViewer)
	_, err := NewUserRepository().Create(withStubTx(tx), u)
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestAccountRepository_Delete_MapsRestrict(t *testing.T) {
	tx := &stubTx{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: pgForeignKeyViolation}
		},
	}
	require.ErrorIs(t, NewAccountRepository().Delete(withStubTx(tx), uuid.New()), account.ErrHasChildren)
}
