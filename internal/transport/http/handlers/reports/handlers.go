package reporthandler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"conges/internal/domain/audit"
	"conges/internal/domain/reports"
	"conges/internal/transport/http/api"
	"conges/internal/transport/http/middleware"
	"conges/internal/transport/http/shared"
)

type Handler struct {
	Reports *reports.Store
	Audit   *audit.Store
}

func NewHandler(store *reports.Store, auditStore *audit.Store) *Handler {
	return &Handler{Reports: store, Audit: auditStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireFinalizer)
		r.Get("/balances", h.handleBalances)
		r.Get("/balances/export", h.handleBalancesExport)
	})
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	year := shared.ParseYear(r, time.Now().Year())
	rows, err := h.Reports.BalanceRows(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalancesExport(w http.ResponseWriter, r *http.Request) {
	year := shared.ParseYear(r, time.Now().Year())
	rows, err := h.Reports.BalanceRows(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}

	format := r.URL.Query().Get("format")
	filename := fmt.Sprintf("soldes-%d", year)

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
		err = reports.WriteXLSX(w, rows, year)
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".pdf"))
		err = reports.WritePDF(w, rows, year)
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		err = reports.WriteCSV(w, rows)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_format", "format must be csv, xlsx or pdf", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		// Headers may already be out; nothing more we can do here.
		slog.Warn("report export failed", "format", format, "err", err,
			"requestId", middleware.GetRequestID(r.Context()))
	}
}
