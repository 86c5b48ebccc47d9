package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current state")

// ErrForbidden indicates the acting user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrInsufficientFunds indicates a debit or block would push an account
// below the blocked-amount invariant.
var ErrInsufficientFunds = errors.New("insufficient available funds")

// ErrInsufficientCapital indicates an investor's available capital does not
// cover the requested principal.
var ErrInsufficientCapital = errors.New("insufficient available capital")

// ErrInvalidStateTransition indicates the operation was attempted on an
// entity that is not in the required state.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrAlreadyResolved indicates a terminal modification request was
// approved or rejected a second time.
var ErrAlreadyResolved = errors.New("request already resolved")

// ErrAccountInactive indicates a ledger operation targeted a frozen or
// closed account.
var ErrAccountInactive = errors.New("account is not active")
