package employeehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"conges/internal/auth"
	"conges/internal/domain/audit"
	"conges/internal/domain/employee"
	"conges/internal/transport/http/api"
	"conges/internal/transport/http/middleware"
	"conges/internal/transport/http/shared"
)

type Handler struct {
	Employees *employee.Store
	Audit     *audit.Store
}

func NewHandler(employees *employee.Store, auditStore *audit.Store) *Handler {
	return &Handler{Employees: employees, Audit: auditStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireFinalizer).Get("/", h.handleList)
		r.With(middleware.RequireRole(employee.RoleRH)).Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(employee.RoleRH)).Put("/{employeeID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	employees, err := h.Employees.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	// Agents can only read their own record.
	if employeeID != user.EmployeeID && !employee.Role(user.Role).CanFinalize() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another employee", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Employees.Get(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type createPayload struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
	SupervisorID    string `json:"supervisorId"`
	ValidationLevel int    `json:"validationLevel"`
	SeniorityDate   string `json:"seniorityDate"`
	ContractType    string `json:"contractType"`
	ContractStart   string `json:"contractStart"`
	ContractEnd     string `json:"contractEnd"`
	Active          *bool  `json:"active"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := employeeFromPayload(payload)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Password) < 8 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "password must be at least 8 characters", middleware.GetRequestID(r.Context()))
		return
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Employees.Create(r.Context(), emp, hash)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionEmployeeCreated, id, map[string]string{"email": emp.Email})
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := employeeFromPayload(payload)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	emp.ID = employeeID

	if err := h.Employees.Update(r.Context(), emp); err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}

	h.Audit.Record(r.Context(), user.EmployeeID, audit.ActionEmployeeUpdated, employeeID, nil)
	api.Success(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}

func employeeFromPayload(payload createPayload) (employee.Employee, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		return employee.Employee{}, errors.New("a valid email is required")
	}
	if strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" {
		return employee.Employee{}, errors.New("first and last name are required")
	}

	role := employee.Role(payload.Role)
	switch role {
	case employee.RoleAgent, employee.RoleRH, employee.RoleDirection:
	case "":
		role = employee.RoleAgent
	default:
		return employee.Employee{}, errors.New("unknown role")
	}

	contractType := employee.ContractType(payload.ContractType)
	switch contractType {
	case employee.ContractPermanent, employee.ContractFixedTerm:
	case "":
		contractType = employee.ContractPermanent
	default:
		return employee.Employee{}, errors.New("unknown contract type")
	}
	if payload.ValidationLevel < 0 || payload.ValidationLevel > 2 {
		return employee.Employee{}, errors.New("validation level must be 0, 1 or 2")
	}

	emp := employee.Employee{
		Email:           email,
		FirstName:       strings.TrimSpace(payload.FirstName),
		LastName:        strings.TrimSpace(payload.LastName),
		Role:            role,
		SupervisorID:    strings.TrimSpace(payload.SupervisorID),
		ValidationLevel: payload.ValidationLevel,
		ContractType:    contractType,
		Active:          true,
	}
	if payload.Active != nil {
		emp.Active = *payload.Active
	}

	if payload.SeniorityDate != "" {
		parsed, err := shared.ParseDate(payload.SeniorityDate)
		if err != nil {
			return employee.Employee{}, errors.New("invalid seniority date")
		}
		emp.SeniorityDate = &parsed
	}
	if payload.ContractStart != "" {
		parsed, err := shared.ParseDate(payload.ContractStart)
		if err != nil {
			return employee.Employee{}, errors.New("invalid contract start date")
		}
		emp.ContractStart = &parsed
	}
	if payload.ContractEnd != "" {
		parsed, err := shared.ParseDate(payload.ContractEnd)
		if err != nil {
			return employee.Employee{}, errors.New("invalid contract end date")
		}
		emp.ContractEnd = &parsed
	}
	if emp.ContractStart != nil && emp.ContractEnd != nil && emp.ContractEnd.Before(*emp.ContractStart) {
		return employee.Employee{}, errors.New("contract end precedes contract start")
	}

	return emp, nil
}
