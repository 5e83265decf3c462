package leavehandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"conges/internal/domain/audit"
	"conges/internal/domain/employee"
	"conges/internal/domain/leave"
	"conges/internal/domain/notifications"
	"conges/internal/transport/http/api"
	"conges/internal/transport/http/middleware"
	"conges/internal/transport/http/shared"
)

type Handler struct {
	Service   *leave.Service
	Store     *leave.Store
	Employees *employee.Store
	Notify    *notifications.Service
	Audit     *audit.Store
}

func NewHandler(service *leave.Service, store *leave.Store, employees *employee.Store, notify *notifications.Service, auditStore *audit.Store) *Handler {
	return &Handler{Service: service, Store: store, Employees: employees, Notify: notify, Audit: auditStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.Post("/requests/{requestID}/decide", h.handleDecideRequest)
		r.With(middleware.RequireFinalizer).Post("/direct", h.handleDirectEntry)
		r.With(middleware.RequireRole(employee.RoleRH)).Delete("/requests/{requestID}", h.handleDeleteRequest)
		r.Get("/balances/{employeeID}", h.handleGetBalance)
		r.With(middleware.RequireRole(employee.RoleRH)).Post("/balances/adjust", h.handleAdjustBalance)
	})
}

// failDomain translates the business sentinels into envelope failures.
// Anything unmapped is a plain 500.
func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())
	type mapping struct {
		target error
		status int
		code   string
	}
	for _, m := range []mapping{
		{leave.ErrInvalidDates, http.StatusBadRequest, "invalid_dates"},
		{leave.ErrTooShortNotice, http.StatusUnprocessableEntity, "too_short_notice"},
		{leave.ErrZeroBusinessDays, http.StatusUnprocessableEntity, "zero_business_days"},
		{leave.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
		{leave.ErrOverlapsValidated, http.StatusConflict, "overlaps_validated"},
		{leave.ErrNotFound, http.StatusNotFound, "request_not_found"},
		{leave.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
		{leave.ErrNotExpectedApprover, http.StatusForbidden, "not_expected_approver"},
		{leave.ErrCircuitIncomplete, http.StatusConflict, "circuit_incomplete"},
		{leave.ErrAcquiredNegative, http.StatusUnprocessableEntity, "acquired_negative"},
		{leave.ErrCarryNegative, http.StatusUnprocessableEntity, "carry_negative"},
		{leave.ErrRemainingNegative, http.StatusUnprocessableEntity, "remaining_negative"},
		{leave.ErrUnknownField, http.StatusBadRequest, "unknown_field"},
		{employee.ErrNotFound, http.StatusNotFound, "employee_not_found"},
	} {
		if errors.Is(err, m.target) {
			api.Fail(w, m.status, m.code, err.Error(), requestID)
			return
		}
	}
	api.Fail(w, http.StatusInternalServerError, fallbackCode, "operation failed", requestID)
}

type requestPayload struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	StartHalf  bool   `json:"startHalf"`
	EndHalf    bool   `json:"endHalf"`
	Reason     string `json:"reason"`
	Comment    string `json:"comment"`
}

func (p requestPayload) dates() (time.Time, time.Time, error) {
	start, err := shared.ParseDate(p.StartDate)
	if err != nil || start.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date")
	}
	end, err := shared.ParseDate(p.EndDate)
	if err != nil || end.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date")
	}
	return start, end, nil
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	start, end, err := payload.dates()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.CreateRequest(r.Context(), user.EmployeeID, start, end, payload.StartHalf, payload.EndHalf, payload.Reason)
	if err != nil {
		failDomain(w, r, err, "leave_request_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionLeaveSubmitted, result.ID, payload)
	h.notifyApprovers(r.Context(), user.EmployeeID, result.NextLevel, notifications.Event{
		Kind:    notifications.KindNewRequest,
		Subject: "Nouvelle demande de conges",
		Body:    fmt.Sprintf("Une demande du %s au %s attend votre validation.", payload.StartDate, payload.EndDate),
	})
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	scope := leave.ListScope{EmployeeID: user.EmployeeID}
	switch r.URL.Query().Get("scope") {
	case "team":
		scope = leave.ListScope{SupervisorID: user.EmployeeID}
	case "all":
		if !employee.Role(user.Role).CanFinalize() {
			api.Fail(w, http.StatusForbidden, "forbidden", "rh or direction role required", middleware.GetRequestID(r.Context()))
			return
		}
		scope = leave.ListScope{}
	}

	requests, err := h.Store.ListRequests(r.Context(), scope, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Store.GetRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		failDomain(w, r, err, "leave_get_failed")
		return
	}
	if !h.canView(r.Context(), user.EmployeeID, employee.Role(user.Role), req) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

// canView allows the requester, the circuit's approvers and the
// finalizing roles.
func (h *Handler) canView(ctx context.Context, viewerID string, role employee.Role, req leave.LeaveRequest) bool {
	if role.CanFinalize() || viewerID == req.EmployeeID {
		return true
	}
	circuit, err := h.Service.Resolver.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return false
	}
	if circuit.Level1 != nil && circuit.Level1.ID == viewerID {
		return true
	}
	return circuit.Level2 != nil && circuit.Level2.ID == viewerID
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
	outcome := leave.Outcome(payload.Outcome)
	if outcome != leave.OutcomeValidate && outcome != leave.OutcomeRefuse {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "outcome must be validate or refuse", middleware.GetRequestID(r.Context()))
		return
	}

	decision, err := h.Service.Decide(r.Context(), requestID, user.EmployeeID, outcome, payload.Comment)
	if err != nil {
		failDomain(w, r, err, "leave_decide_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionLeaveDecided, requestID, decision)
	if decision.Final {
		body := "Votre demande de conges a ete refusee."
		if decision.NewStatus == leave.StatusValidated {
			body = "Votre demande de conges a ete validee."
		}
		h.Notify.Publish(r.Context(), notifications.Event{
			Kind:       notifications.KindFinalDecision,
			Recipients: []string{decision.EmployeeID},
			Subject:    "Decision sur votre demande de conges",
			Body:       body,
		})
	} else {
		h.notifyApprovers(r.Context(), decision.EmployeeID, decision.NextLevel, notifications.Event{
			Kind:    notifications.KindLevelProgress,
			Subject: "Demande de conges a valider",
			Body:    "Une demande a progresse dans le circuit et attend votre validation.",
		})
	}
	api.Success(w, decision, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDirectEntry(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}
	start, end, err := payload.dates()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.CreateValidated(r.Context(), user.EmployeeID, payload.EmployeeID, start, end, payload.StartHalf, payload.EndHalf, payload.Comment)
	if err != nil {
		failDomain(w, r, err, "leave_direct_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionLeaveDirectEntry, result.ID, payload)
	h.Notify.Publish(r.Context(), notifications.Event{
		Kind:       notifications.KindFinalDecision,
		Recipients: []string{payload.EmployeeID},
		Subject:    "Conges enregistres",
		Body:       fmt.Sprintf("Un conge du %s au %s a ete enregistre et valide.", payload.StartDate, payload.EndDate),
	})
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	if err := h.Service.Delete(r.Context(), requestID); err != nil {
		failDomain(w, r, err, "leave_delete_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionLeaveDeleted, requestID, nil)
	api.Success(w, map[string]string{"id": requestID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if employeeID != user.EmployeeID && !employee.Role(user.Role).CanFinalize() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another employee's balance", middleware.GetRequestID(r.Context()))
		return
	}

	year := shared.ParseYear(r, time.Now().Year())
	balance, err := h.Service.Balance(r.Context(), employeeID, year)
	if err != nil {
		failDomain(w, r, err, "balance_failed")
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

type adjustPayload struct {
	EmployeeID string  `json:"employeeId"`
	Year       int     `json:"year"`
	Field      string  `json:"field"`
	Delta      float64 `json:"delta"`
}

func (h *Handler) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload adjustPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.EmployeeID == "" || payload.Year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId and year are required", middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Service.AdjustBalance(r.Context(), payload.EmployeeID, payload.Year, leave.AdjustField(payload.Field), payload.Delta)
	if err != nil {
		failDomain(w, r, err, "balance_adjust_failed")
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionBalanceAdjusted, payload.EmployeeID, payload)
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

// notifyApprovers resolves who sits at the given level and fans the
// event out to them. RH is the fallback recipient group.
func (h *Handler) notifyApprovers(ctx context.Context, employeeID string, level int, event notifications.Event) {
	rhIDs, err := h.Employees.RHIDs(ctx)
	if err != nil {
		rhIDs = nil
	}
	approvers, err := h.Service.NextApprovers(ctx, employeeID, level, rhIDs)
	if err != nil || len(approvers) == 0 {
		return
	}
	event.Recipients = approvers
	h.Notify.Publish(ctx, event)
}
