package operations

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/racketops/internal/export"
	"github.com/courtside/racketops/internal/metrics"
	"github.com/courtside/racketops/internal/operations"
)

type Handler struct {
	svc      *operations.Service
	exporter *export.Service
	metrics  *metrics.Registry
}

func NewHandler(svc *operations.Service, exporter *export.Service, reg *metrics.Registry) *Handler {
	return &Handler{svc: svc, exporter: exporter, metrics: reg}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export", h.exportCSV)
}

const (
	defaultPage     = 1
	maxPage         = 10000
	defaultPageSize = 50
	maxPageSize     = 200
)

// clampInt parses s as a positive integer, falling back to def and clamping
// into [1, max]. A malformed or out-of-range value never fails the list
// view.
func clampInt(s string, def, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		n = def
	}

	if n < 1 {
		n = 1
	}

	if n > max {
		n = max
	}

	return n
}

func parseListQuery(r *http.Request) operations.ListQuery {
	qs := r.URL.Query()

	q := operations.ListQuery{
		Page:     clampInt(qs.Get("page"), defaultPage, maxPage),
		PageSize: clampInt(qs.Get("pageSize"), defaultPageSize, maxPageSize),
		Kind:     operations.KindAll,
		Query:    strings.TrimSpace(qs.Get("q")),
		WarnOnly: qs.Get("warn") == "1",
	}

	switch k := operations.Kind(qs.Get("kind")); k {
	case operations.KindOrder, operations.KindRental, operations.KindApplication:
		q.Kind = k
	}

	if f, err := strconv.Atoi(qs.Get("flow")); err == nil && f >= 1 && f <= 7 {
		q.Flow = operations.Flow(f)
	}

	switch qs.Get("integrated") {
	case "true":
		q.Integrated = new(true)
	case "false":
		q.Integrated = new(false)
	}

	return q
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), parseListQuery(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	h.observe(res)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toListResponse(res)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)
	// Exports default to the widest page so a spreadsheet gets the whole
	// filtered view in one request.
	if r.URL.Query().Get("pageSize") == "" {
		q.PageSize = maxPageSize
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="operations.csv"`)

	if err := h.exporter.WriteCSV(r.Context(), q, w); err != nil {
		slog.Error("failed to export operations", "error", err)

		if errors.Is(err, operations.ErrUpstream) {
			http.Error(w, "record store unavailable", http.StatusBadGateway)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, operations.ErrUpstream) {
		slog.Error("record store unavailable", "error", err)
		http.Error(w, "record store unavailable", http.StatusBadGateway)

		return
	}

	slog.Error("operations list failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) observe(res *operations.ListResult) {
	if h.metrics == nil {
		return
	}

	h.metrics.ItemsListed.Add(float64(len(res.Items)))

	for _, it := range res.Items {
		if it.Warn {
			h.metrics.WarnedItems.Inc()
		}
	}
}
