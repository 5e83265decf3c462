package leave

import "errors"

var (
	ErrInvalidDates        = errors.New("invalid date range")
	ErrTooShortNotice      = errors.New("request submitted with too short notice")
	ErrZeroBusinessDays    = errors.New("range contains no business day")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrOverlapsValidated   = errors.New("range overlaps a validated request")
	ErrNotFound            = errors.New("leave request not found")
	ErrAlreadyProcessed    = errors.New("request already processed")
	ErrNotExpectedApprover = errors.New("validator is not the expected approver for the current level")
	ErrCircuitIncomplete   = errors.New("hierarchical validation still outstanding")
	ErrAcquiredNegative    = errors.New("acquired days cannot become negative")
	ErrCarryNegative       = errors.New("carried over days cannot become negative")
	ErrRemainingNegative   = errors.New("adjustment would drive the remaining balance negative")
	ErrUnknownField        = errors.New("unknown balance field")
)
