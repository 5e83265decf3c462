package cethandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conges/internal/domain/audit"
	"conges/internal/domain/cet"
	"conges/internal/domain/employee"
	"conges/internal/domain/notifications"
	"conges/internal/transport/http/api"
	"conges/internal/transport/http/middleware"
	"conges/internal/transport/http/shared"
)

type Handler struct {
	Service *cet.Service
	Store   *cet.Store
	Notify  *notifications.Service
	Audit   *audit.Store
}

func NewHandler(service *cet.Service, store *cet.Store, notify *notifications.Service, auditStore *audit.Store) *Handler {
	return &Handler{Service: service, Store: store, Notify: notify, Audit: auditStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cet", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/account", h.handleAccount)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequireRole(employee.RoleRH)).Post("/requests/{requestID}/decide", h.handleDecideRequest)
	})
}

func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())
	type mapping struct {
		target error
		status int
		code   string
	}
	for _, m := range []mapping{
		{cet.ErrInvalidDays, http.StatusBadRequest, "invalid_days"},
		{cet.ErrUnknownKind, http.StatusBadRequest, "unknown_kind"},
		{cet.ErrSeniorityUnknown, http.StatusUnprocessableEntity, "seniority_unknown"},
		{cet.ErrInsufficientSeniority, http.StatusUnprocessableEntity, "insufficient_seniority"},
		{cet.ErrInsufficientTakenDays, http.StatusUnprocessableEntity, "insufficient_taken_days"},
		{cet.ErrAnnualCapReached, http.StatusUnprocessableEntity, "annual_cap_reached"},
		{cet.ErrCeilingReached, http.StatusUnprocessableEntity, "ceiling_reached"},
		{cet.ErrInsufficientCET, http.StatusUnprocessableEntity, "insufficient_cet_balance"},
		{cet.ErrInsufficientRemaining, http.StatusUnprocessableEntity, "insufficient_remaining"},
		{cet.ErrPendingExists, http.StatusConflict, "pending_exists"},
		{cet.ErrNotFound, http.StatusNotFound, "cet_request_not_found"},
		{cet.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
		{employee.ErrNotFound, http.StatusNotFound, "employee_not_found"},
	} {
		if errors.Is(err, m.target) {
			api.Fail(w, m.status, m.code, err.Error(), requestID)
			return
		}
	}
	api.Fail(w, http.StatusInternalServerError, fallbackCode, "operation failed", requestID)
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID := user.EmployeeID
	if other := r.URL.Query().Get("employeeId"); other != "" && other != employeeID {
		if !employee.Role(user.Role).CanFinalize() {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another employee's account", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = other
	}

	account, err := h.Service.Balance(r.Context(), employeeID)
	if err != nil {
		failDomain(w, r, err, "cet_account_failed")
		return
	}
	api.Success(w, account, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	employeeID := user.EmployeeID
	if employee.Role(user.Role).CanFinalize() && r.URL.Query().Get("scope") == "all" {
		employeeID = ""
	}

	requests, err := h.Store.ListRequests(r.Context(), employeeID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cet_list_failed", "failed to list cet requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

type transferPayload struct {
	Kind   string  `json:"kind"`
	Days   float64 `json:"days"`
	Reason string  `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload transferPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.RequestTransfer(r.Context(), user.EmployeeID, cet.Kind(payload.Kind), payload.Days, payload.Reason)
	if err != nil {
		failDomain(w, r, err, "cet_request_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionCETRequested, req.ID, payload)
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

type decidePayload struct {
	Outcome string `json:"outcome"`
	Comment string `json:"comment"`
}

func (h *Handler) handleDecideRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var payload decidePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	outcome := cet.Outcome(payload.Outcome)
	if outcome != cet.OutcomeValidate && outcome != cet.OutcomeRefuse {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "outcome must be validate or refuse", middleware.GetRequestID(r.Context()))
		return
	}

	decided, err := h.Service.DecideRequest(r.Context(), requestID, user.EmployeeID, outcome, payload.Comment)
	if err != nil {
		failDomain(w, r, err, "cet_decide_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionCETDecided, requestID, decided)
	h.Notify.Publish(r.Context(), notifications.Event{
		Kind:       notifications.KindCETDecision,
		Recipients: []string{decided.EmployeeID},
		Subject:    "Decision sur votre demande CET",
		Body:       fmt.Sprintf("Votre demande de transfert de %.1f jour(s) a ete traitee.", decided.Days),
	})
	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}
