package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_003", "Insufficient wallet balance", http.StatusPaymentRequired),
			expected: "[WAL_003] Insufficient wallet balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("WAL_004", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestChainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"ChainUnavailable", ErrChainUnavailable(fmt.Errorf("empty")), "CHAIN_001", 503},
		{"ChainConflict", ErrChainConflict(), "CHAIN_002", 409},
		{"ChainInvalid", ErrChainInvalid("link broken at index 3"), "CHAIN_003", 409},
		{"MiningTimeout", ErrMiningTimeout(1 << 20), "CHAIN_004", 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"WalletAlreadyExists", ErrWalletAlreadyExists(), "WAL_001", 409},
		{"BonusAlreadyClaimed", ErrBonusAlreadyClaimed(), "WAL_002", 409},
		{"InsufficientBalance", ErrInsufficientBalance(), "WAL_003", 402},
		{"InvalidAmount", ErrInvalidAmount(), "WAL_004", 400},
		{"NotFound", ErrNotFound("Wallet"), "WAL_005", 404},
		{"Validation", Validation("malformed request body"), "VAL_001", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestChainInvalidDetail(t *testing.T) {
	err := ErrChainInvalid("hash mismatch at index 2")
	assert.Contains(t, err.Message, "index 2")
}
