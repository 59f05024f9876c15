package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/courtside/racketops/internal/operations"
)

// Service writes the filtered operations list as CSV for operator
// spreadsheets. It is a pure projection of the same pipeline output the JSON
// listing returns.
type Service struct {
	ops *operations.Service
}

func NewService(ops *operations.Service) *Service {
	return &Service{ops: ops}
}

var header = []string{
	"id", "kind", "created_at", "customer", "email", "title",
	"status", "payment", "amount", "amount_note", "flow",
	"settlement_anchor", "related", "integrated", "warnings", "pendings",
	"next_action",
}

// WriteCSV streams the requested page of the operations list to w.
func (s *Service) WriteCSV(ctx context.Context, q operations.ListQuery, w io.Writer) error {
	res, err := s.ops.List(ctx, q)
	if err != nil {
		return fmt.Errorf("listing operations: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, it := range res.Items {
		if err := cw.Write(row(it)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func row(it *operations.OperationItem) []string {
	related := ""
	if it.Related != nil {
		related = string(it.Related.Kind) + ":" + it.Related.ID
	}

	return []string{
		it.ID,
		string(it.Kind),
		it.CreatedAt.Format("2006-01-02 15:04:05"),
		it.Customer.Name,
		it.Customer.Email,
		it.Title,
		it.StatusLabel,
		it.PaymentLabel,
		strconv.FormatInt(it.Amount, 10),
		it.AmountNote,
		strconv.Itoa(int(it.Flow)),
		string(it.SettlementAnchor),
		related,
		strconv.FormatBool(it.IsIntegrated),
		joinReasons(it.Warnings),
		joinReasons(it.Pendings),
		it.NextAction,
	}
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}

		out += r
	}

	return out
}
