package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
)

const exportSheet = "Requests"

var exportHeader = []any{
	"ID", "Title", "Status", "Category", "Requester ID", "Submitted at", "Decided at", "Rejected reason", "Created at",
}

// RequestExporter renders a filtered request listing as an XLSX workbook.
type RequestExporter struct {
	lister     *RequestLister
	tx         Transactor
	categories category.Repository
}

func NewRequestExporter(lister *RequestLister, tx Transactor, categories category.Repository) *RequestExporter {
	return &RequestExporter{lister: lister, tx: tx, categories: categories}
}

// Export writes every request matching filter to w, ignoring its Limit and Offset.
// Business failures come back in the result and nothing is written.
func (s *RequestExporter) Export(
	ctx context.Context,
	ability *permissions.Ability,
	filter RequestFilter,
	w io.Writer,
) (Result[int], error) {
	filter.Limit, filter.Offset = 0, 0
	listed, err := s.lister.List(ctx, ability, filter)
	if err != nil {
		return Result[int]{}, err
	}
	if !listed.Success {
		return Result[int]{Err: listed.Err}, nil
	}

	names, err := s.categoryNames(ctx, listed.Payload.Requests)
	if err != nil {
		return Result[int]{}, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return Result[int]{}, errors.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return Result[int]{}, errors.Wrap(err, "write header")
	}
	for i, r := range listed.Payload.Requests {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Result[int]{}, err
		}
		row := []any{
			r.ID().String(),
			r.Title(),
			string(r.Status()),
			names[r.CategoryID()],
			r.UserID().String(),
			formatTime(r.SubmittedAt()),
			formatTime(r.DecidedAt()),
			r.RejectedReason(),
			r.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return Result[int]{}, errors.Wrap(err, fmt.Sprintf("write row %d", i+2))
		}
	}
	if err := f.Write(w); err != nil {
		return Result[int]{}, errors.Wrap(err, "write workbook")
	}
	return success(len(listed.Payload.Requests)), nil
}

func (s *RequestExporter) categoryNames(ctx context.Context, requests []request.Request) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(requests))
	if len(requests) == 0 {
		return names, nil
	}
	accountID := requests[0].AccountID()
	ids := make([]uuid.UUID, 0, len(requests))
	for _, r := range requests {
		if _, seen := names[r.CategoryID()]; !seen {
			names[r.CategoryID()] = ""
			ids = append(ids, r.CategoryID())
		}
	}
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		found, err := s.categories.GetByIDs(txCtx, accountID, ids)
		if err != nil {
			return err
		}
		for _, c := range found {
			names[c.ID()] = c.Name()
		}
		return nil
	})
	return names, err
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
