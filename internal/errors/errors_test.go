package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "User not found")
		assert.Equal(t, "NOT_FOUND: User not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "email", "reason": "invalid format"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"TokenExpired", func() *AppError { return TokenExpired() }, ErrCodeTokenExpired},
		{"TokenRevoked", func() *AppError { return TokenRevoked() }, ErrCodeTokenRevoked},
		{"InvalidCredentials", func() *AppError { return InvalidCredentials() }, ErrCodeInvalidCredentials},
		{"NotFound", func() *AppError { return NotFound("User") }, ErrCodeNotFound},
		{"DuplicateEmail", func() *AppError { return DuplicateEmail() }, ErrCodeDuplicateEmail},
		{"InvalidResetToken", func() *AppError { return InvalidResetToken() }, ErrCodeInvalidResetToken},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("email", "invalid") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("email") }, ErrCodeMissingRequired},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.constructor()
			assert.Equal(t, tt.expectedCode, err.Code)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Run("IsAppError recognizes AppError", func(t *testing.T) {
		assert.True(t, IsAppError(NotFound("User")))
		assert.False(t, IsAppError(errors.New("plain error")))
	})

	t.Run("AsAppError extracts AppError", func(t *testing.T) {
		appErr, ok := AsAppError(DuplicateEmail())
		assert.True(t, ok)
		assert.Equal(t, ErrCodeDuplicateEmail, appErr.Code)

		_, ok = AsAppError(errors.New("plain error"))
		assert.False(t, ok)
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, GetCode(NotFound("User")))
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain error")))
	})
}
