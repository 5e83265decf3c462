package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"conges/internal/domain/audit"
	"conges/internal/domain/employee"
	"conges/internal/transport/http/api"
	"conges/internal/transport/http/middleware"
	"conges/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Store
}

func NewHandler(store *audit.Store) *Handler {
	return &Handler{Audit: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireRole(employee.RoleRH, employee.RoleDirection))
		r.Get("/", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	entries, err := h.Audit.List(r.Context(), r.URL.Query().Get("action"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit entries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}
