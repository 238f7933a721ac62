package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Chain (CHAIN) ----

func ErrChainUnavailable(err error) *AppError {
	return Wrap("CHAIN_001", "Ledger chain unavailable", http.StatusServiceUnavailable, err)
}

// ErrChainConflict signals a concurrent-append index collision. Retryable:
// the caller should re-read the latest block and mine again.
func ErrChainConflict() *AppError {
	return New("CHAIN_002", "Concurrent append detected, retry against new chain tail", http.StatusConflict)
}

// ErrChainInvalid is terminal. A broken link is reported, never repaired.
func ErrChainInvalid(detail string) *AppError {
	return New("CHAIN_003", fmt.Sprintf("Chain integrity violation: %s", detail), http.StatusConflict)
}

func ErrMiningTimeout(attempts uint64) *AppError {
	return New("CHAIN_004", fmt.Sprintf("Proof-of-work search exceeded %d attempts", attempts), http.StatusServiceUnavailable)
}

// ---- Wallet Business Logic (WAL) ----

func ErrWalletAlreadyExists() *AppError {
	return New("WAL_001", "Wallet already exists for this user", http.StatusConflict)
}

func ErrBonusAlreadyClaimed() *AppError {
	return New("WAL_002", "Welcome bonus already claimed", http.StatusConflict)
}

func ErrInsufficientBalance() *AppError {
	return New("WAL_003", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_004", "Amount must be a positive integer", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WAL_005", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ---- Request Validation (VAL) ----

// Validation reports malformed or rejected request input. It is not tied to
// any one domain; wallet amount rules keep their own WAL_004 code.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
