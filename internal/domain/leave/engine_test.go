package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conges/internal/domain/employee"
)

// fakeStore is an in-memory TxStore/Tx double. It is not safe for
// concurrent use; tests drive it sequentially.
type fakeStore struct {
	requests map[string]*LeaveRequest
	balances map[string]*LeaveBalance
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: map[string]*LeaveRequest{},
		balances: map[string]*LeaveBalance{},
	}
}

func balanceKey(employeeID string, year int) string {
	return fmt.Sprintf("%s/%d", employeeID, year)
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return fn(f)
}

func (f *fakeStore) InsertRequest(ctx context.Context, req LeaveRequest) (string, error) {
	f.nextID++
	req.ID = fmt.Sprintf("req-%d", f.nextID)
	req.CreatedAt = time.Now()
	f.requests[req.ID] = &req
	return req.ID, nil
}

func (f *fakeStore) RequestForUpdate(ctx context.Context, id string) (LeaveRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	return *req, nil
}

func (f *fakeStore) DeleteRequest(ctx context.Context, id string) error {
	if _, ok := f.requests[id]; !ok {
		return ErrNotFound
	}
	delete(f.requests, id)
	return nil
}

func overlaps(req *LeaveRequest, start, end time.Time) bool {
	return !req.StartDate.After(end) && !req.EndDate.Before(start)
}

func (f *fakeStore) HasValidatedOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	for _, req := range f.requests {
		if req.EmployeeID == employeeID && req.Status == StatusValidated && overlaps(req, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ReplacePendingOverlaps(ctx context.Context, employeeID string, start, end time.Time) (int, error) {
	replaced := 0
	for id, req := range f.requests {
		if req.EmployeeID == employeeID && req.Status == StatusPending && overlaps(req, start, end) {
			delete(f.requests, id)
			replaced++
		}
	}
	return replaced, nil
}

func (f *fakeStore) StampLevel(ctx context.Context, id string, level int, validatorID string, at time.Time) error {
	req := f.requests[id]
	switch level {
	case Level1:
		req.Level1Status = LevelValidated
		req.Level1Validator = validatorID
		req.Level1At = &at
	case Level2:
		req.Level2Status = LevelValidated
		req.Level2Validator = validatorID
		req.Level2At = &at
	}
	return nil
}

func (f *fakeStore) MarkValidated(ctx context.Context, id, validatorID string, at time.Time) error {
	req := f.requests[id]
	req.Status = StatusValidated
	req.FinalValidator = validatorID
	req.ValidatedAt = &at
	return nil
}

func (f *fakeStore) MarkRefused(ctx context.Context, id, validatorID, comment string, at time.Time) error {
	req := f.requests[id]
	req.Status = StatusRefused
	req.FinalValidator = validatorID
	req.ValidatedAt = &at
	req.Comment = comment
	return nil
}

func (f *fakeStore) ValidatedRequests(ctx context.Context, employeeID string, year int) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, req := range f.requests {
		if req.EmployeeID == employeeID && req.Status == StatusValidated && req.Year() == year {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeStore) EnsureBalance(ctx context.Context, emp employee.Employee, year int) (LeaveBalance, error) {
	key := balanceKey(emp.ID, year)
	if b, ok := f.balances[key]; ok {
		return *b, nil
	}
	acquired := DefaultAcquired(emp, year)
	b := LeaveBalance{EmployeeID: emp.ID, Year: year, Acquired: acquired, Remaining: acquired}
	f.balances[key] = &b
	return b, nil
}

func (f *fakeStore) SaveBalanceTotals(ctx context.Context, b LeaveBalance) error {
	stored := f.balances[balanceKey(b.EmployeeID, b.Year)]
	stored.Taken = b.Taken
	stored.FractionnementBonus = b.FractionnementBonus
	stored.Remaining = b.Remaining
	return nil
}

func (f *fakeStore) SaveBalanceComponents(ctx context.Context, b LeaveBalance) error {
	stored := f.balances[balanceKey(b.EmployeeID, b.Year)]
	stored.Acquired = b.Acquired
	stored.CarriedOver = b.CarriedOver
	stored.Compensatory = b.Compensatory
	stored.Remaining = b.Remaining
	return nil
}

type fakeDirectory map[string]employee.Employee

func (f fakeDirectory) Get(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

func permanent(id string, role employee.Role, supervisorID string) employee.Employee {
	return employee.Employee{
		ID:           id,
		Role:         role,
		SupervisorID: supervisorID,
		ContractType: employee.ContractPermanent,
		Active:       true,
	}
}

// Directory fixture: agent -> chef -> directeur, plus RH.
func twoLevelDirectory() fakeDirectory {
	return fakeDirectory{
		"agent":     permanent("agent", employee.RoleAgent, "chef"),
		"chef":      permanent("chef", employee.RoleAgent, "directeur"),
		"directeur": permanent("directeur", employee.RoleAgent, ""),
		"rh":        permanent("rh", employee.RoleRH, ""),
		"autre":     permanent("autre", employee.RoleAgent, ""),
	}
}

func pendingRequest(t *testing.T, store *fakeStore, employeeID string, start, end time.Time, days float64) string {
	t.Helper()
	id, err := store.InsertRequest(context.Background(), LeaveRequest{
		EmployeeID:   employeeID,
		StartDate:    start,
		EndDate:      end,
		BusinessDays: days,
		Status:       StatusPending,
	})
	require.NoError(t, err)
	return id
}

func TestDecideLevel1KeepsStatusPending(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "agent", date(2025, 9, 15), date(2025, 9, 19), 5)

	decision, err := engine.Decide(context.Background(), id, "chef", OutcomeValidate, "")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, store.requests[id].Status)
	assert.Equal(t, LevelValidated, store.requests[id].Level1Status)
	assert.Equal(t, "chef", store.requests[id].Level1Validator)
	assert.False(t, decision.Final)
	assert.Equal(t, Level2, decision.NextLevel)
}

func TestDecideLevel2ThenFinal(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "agent", date(2025, 9, 15), date(2025, 9, 19), 5)

	_, err := engine.Decide(context.Background(), id, "chef", OutcomeValidate, "")
	require.NoError(t, err)

	decision, err := engine.Decide(context.Background(), id, "directeur", OutcomeValidate, "")
	require.NoError(t, err)
	assert.Equal(t, LevelFinal, decision.NextLevel)
	assert.Equal(t, StatusPending, store.requests[id].Status)

	decision, err = engine.Decide(context.Background(), id, "rh", OutcomeValidate, "")
	require.NoError(t, err)
	assert.True(t, decision.Final)
	assert.Equal(t, StatusValidated, decision.NewStatus)
	assert.Equal(t, StatusValidated, store.requests[id].Status)

	balance := store.balances[balanceKey("agent", 2025)]
	assert.Equal(t, 5.0, balance.Taken)
	assert.Equal(t, 20.0, balance.Remaining)
}

func TestDecideNoSupervisorGoesStraightToFinal(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "autre", date(2025, 6, 2), date(2025, 6, 6), 5)

	decision, err := engine.Decide(context.Background(), id, "rh", OutcomeValidate, "")
	require.NoError(t, err)
	assert.True(t, decision.Final)
	assert.Equal(t, StatusValidated, store.requests[id].Status)
	assert.Equal(t, 5.0, store.balances[balanceKey("autre", 2025)].Taken)
}

func TestDecideRHCannotSkipOutstandingLevel(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "agent", date(2025, 9, 15), date(2025, 9, 19), 5)

	_, err := engine.Decide(context.Background(), id, "rh", OutcomeValidate, "")
	require.ErrorIs(t, err, ErrCircuitIncomplete)
	assert.Equal(t, StatusPending, store.requests[id].Status)
}

func TestDecideWrongValidatorDenied(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "agent", date(2025, 9, 15), date(2025, 9, 19), 5)

	_, err := engine.Decide(context.Background(), id, "autre", OutcomeValidate, "")
	require.ErrorIs(t, err, ErrNotExpectedApprover)
}

func TestDecideRefusalIsTerminalAndTouchesNoBalance(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "agent", date(2025, 9, 15), date(2025, 9, 19), 5)

	decision, err := engine.Decide(context.Background(), id, "chef", OutcomeRefuse, "effectif insuffisant")
	require.NoError(t, err)
	assert.True(t, decision.Final)
	assert.Equal(t, StatusRefused, store.requests[id].Status)
	assert.Equal(t, "effectif insuffisant", store.requests[id].Comment)
	assert.Empty(t, store.balances)

	_, err = engine.Decide(context.Background(), id, "rh", OutcomeValidate, "")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestDecideFinalApprovalIsIdempotent(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	id := pendingRequest(t, store, "autre", date(2025, 6, 2), date(2025, 6, 6), 5)

	_, err := engine.Decide(context.Background(), id, "rh", OutcomeValidate, "")
	require.NoError(t, err)
	takenAfterFirst := store.balances[balanceKey("autre", 2025)].Taken

	decision, err := engine.Decide(context.Background(), id, "rh", OutcomeValidate, "")
	require.NoError(t, err)
	assert.True(t, decision.Final)
	assert.Equal(t, StatusValidated, decision.NewStatus)
	assert.Equal(t, takenAfterFirst, store.balances[balanceKey("autre", 2025)].Taken)
}

func TestRecomputeSumsOnlyValidatedRequestsOfYear(t *testing.T) {
	store := newFakeStore()
	dir := twoLevelDirectory()
	engine := NewEngine(store, dir)

	// Two validated requests in 2025, one pending, one in 2026.
	first := pendingRequest(t, store, "autre", date(2025, 2, 3), date(2025, 2, 7), 5)
	_, err := engine.Decide(context.Background(), first, "rh", OutcomeValidate, "")
	require.NoError(t, err)

	second := pendingRequest(t, store, "autre", date(2025, 11, 3), date(2025, 11, 4), 2)
	_, err = engine.Decide(context.Background(), second, "rh", OutcomeValidate, "")
	require.NoError(t, err)

	pendingRequest(t, store, "autre", date(2025, 12, 1), date(2025, 12, 2), 2)

	next := pendingRequest(t, store, "autre", date(2026, 1, 5), date(2026, 1, 6), 2)
	_, err = engine.Decide(context.Background(), next, "rh", OutcomeValidate, "")
	require.NoError(t, err)

	balance := store.balances[balanceKey("autre", 2025)]
	assert.Equal(t, 7.0, balance.Taken)
	// Feb 3-7 and Nov 3-4 are out of the main period: 7 weekdays, tier 2.
	assert.Equal(t, 2.0, balance.FractionnementBonus)
	assert.Equal(t, 25.0+2.0-7.0, balance.Remaining)

	nextYear := store.balances[balanceKey("autre", 2026)]
	assert.Equal(t, 2.0, nextYear.Taken)
}

func TestCurrentStageTransitions(t *testing.T) {
	chef := permanent("chef", employee.RoleAgent, "directeur")
	directeur := permanent("directeur", employee.RoleAgent, "")
	full := Circuit{Level1: &chef, Level2: &directeur}

	req := LeaveRequest{Status: StatusPending}
	assert.Equal(t, StageAwaitingLevel1, CurrentStage(req, full))

	req.Level1Status = LevelValidated
	assert.Equal(t, StageAwaitingLevel2, CurrentStage(req, full))

	req.Level2Status = LevelValidated
	assert.Equal(t, StageAwaitingFinal, CurrentStage(req, full))

	req.Status = StatusValidated
	assert.Equal(t, StageValidated, CurrentStage(req, full))

	req.Status = StatusRefused
	assert.Equal(t, StageRefused, CurrentStage(req, full))

	assert.Equal(t, StageAwaitingFinal, CurrentStage(LeaveRequest{Status: StatusPending}, Circuit{}))
}
