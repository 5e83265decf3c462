package holidayhandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"conges/internal/domain/audit"
	"conges/internal/domain/calendar"
	"conges/internal/domain/employee"
	"conges/internal/transport/http/api"
	"conges/internal/transport/http/middleware"
	"conges/internal/transport/http/shared"
)

type Handler struct {
	Holidays *calendar.Store
	Audit    *audit.Store
}

func NewHandler(holidays *calendar.Store, auditStore *audit.Store) *Handler {
	return &Handler{Holidays: holidays, Audit: auditStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/holidays", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(employee.RoleRH)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(employee.RoleRH)).Delete("/{holidayID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	year := shared.ParseYear(r, 0)
	holidays, err := h.Holidays.List(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_list_failed", "failed to list holidays", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

type holidayPayload struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	holidayDate, err := shared.ParseDate(payload.Date)
	if err != nil || holidayDate.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date", middleware.GetRequestID(r.Context()))
		return
	}
	label := strings.TrimSpace(payload.Label)
	if label == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "label is required", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Holidays.Create(r.Context(), holidayDate, label)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday", middleware.GetRequestID(r.Context()))
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionHolidayCreated, id, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	holidayID := chi.URLParam(r, "holidayID")

	if err := h.Holidays.Delete(r.Context(), holidayID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_delete_failed", "failed to delete holiday", middleware.GetRequestID(r.Context()))
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionHolidayDeleted, holidayID, nil)
	api.Success(w, map[string]string{"id": holidayID}, middleware.GetRequestID(r.Context()))
}
