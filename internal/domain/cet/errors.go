package cet

import "errors"

var (
	ErrInvalidDays           = errors.New("days must be a positive number")
	ErrUnknownKind           = errors.New("unknown transfer kind")
	ErrSeniorityUnknown      = errors.New("seniority date is not recorded")
	ErrInsufficientSeniority = errors.New("at least one year of seniority is required")
	ErrInsufficientTakenDays = errors.New("at least 20 leave days must be taken this year")
	ErrAnnualCapReached      = errors.New("annual credit cap of 5 days reached")
	ErrCeilingReached        = errors.New("account ceiling of 60 days would be exceeded")
	ErrInsufficientCET       = errors.New("account balance is lower than the requested days")
	ErrInsufficientRemaining = errors.New("annual leave balance is lower than the requested days")
	ErrPendingExists         = errors.New("a pending request of the same kind already exists")
	ErrNotFound              = errors.New("cet request not found")
	ErrAlreadyProcessed      = errors.New("cet request already processed")
)
