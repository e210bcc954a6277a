package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "partner not found",
			},
			want: "partner not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConflictField(t *testing.T) {
	err := ConflictField("siret", "a partner with this SIRET already exists")
	if err.Code != ErrCodeConflict {
		t.Errorf("ConflictField().Code = %v, want %v", err.Code, ErrCodeConflict)
	}
	if err.Field != "siret" {
		t.Errorf("ConflictField().Field = %v, want %v", err.Field, "siret")
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "invalid email format")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "email" {
		t.Errorf("ValidationField().Field = %v, want %v", err.Field, "email")
	}
	if err.Message != "invalid email format" {
		t.Errorf("ValidationField().Message = %v, want %v", err.Message, "invalid email format")
	}
}

func TestInvalidTransitionf(t *testing.T) {
	err := InvalidTransitionf("cannot approve partner in status %q", "rejected")
	if err.Code != ErrCodeInvalidTransition {
		t.Errorf("InvalidTransitionf().Code = %v, want %v", err.Code, ErrCodeInvalidTransition)
	}
	if err.Message != `cannot approve partner in status "rejected"` {
		t.Errorf("InvalidTransitionf().Message = %v", err.Message)
	}
}

func TestNotEligible(t *testing.T) {
	err := NotEligible("partner is not approved")
	if err.Code != ErrCodeNotEligible {
		t.Errorf("NotEligible().Code = %v, want %v", err.Code, ErrCodeNotEligible)
	}
}

func TestTemplateNotFoundf(t *testing.T) {
	err := TemplateNotFoundf("no template registered for kind %q", "partner-welcome")
	if err.Code != ErrCodeTemplateNotFound {
		t.Errorf("TemplateNotFoundf().Code = %v, want %v", err.Code, ErrCodeTemplateNotFound)
	}
}

func TestTransportFailure(t *testing.T) {
	cause := errors.New("connection reset")
	err := TransportFailure("mail provider unavailable", cause)
	if err.Code != ErrCodeTransportFailure {
		t.Errorf("TransportFailure().Code = %v, want %v", err.Code, ErrCodeTransportFailure)
	}
	if !errors.Is(err, cause) {
		t.Errorf("TransportFailure() should wrap its cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if err.Code != ErrCodeInternal {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if err.Message != "wrapped error" {
		t.Errorf("Wrap().Message = %v, want %v", err.Message, "wrapped error")
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Wrap().Cause = %v, want %v", err.Cause, cause)
	}
}

func TestWrap_NilError(t *testing.T) {
	err := Wrap(nil, ErrCodeInternal, "wrapped error")
	if err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestIsConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "conflict error",
			err:  Conflict("conflict"),
			want: true,
		},
		{
			name: "conflict field error",
			err:  ConflictField("email", "already registered"),
			want: true,
		},
		{
			name: "other error",
			err:  NotFound("not found"),
			want: false,
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConflict(tt.err); got != tt.want {
				t.Errorf("IsConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInvalidTransition(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "invalid transition error",
			err:  InvalidTransitionf("cannot approve partner in status %q", "suspended"),
			want: true,
		},
		{
			name: "other error",
			err:  Conflict("conflict"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidTransition(tt.err); got != tt.want {
				t.Errorf("IsInvalidTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotEligible(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "not eligible error",
			err:  NotEligiblef("partner %s is not approved", "p1"),
			want: true,
		},
		{
			name: "other error",
			err:  NotFound("not found"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotEligible(tt.err); got != tt.want {
				t.Errorf("IsNotEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTemplateNotFound(t *testing.T) {
	if !IsTemplateNotFound(TemplateNotFoundf("missing %q", "partner-welcome")) {
		t.Error("IsTemplateNotFound() = false, want true")
	}
	if IsTemplateNotFound(Internal("boom")) {
		t.Error("IsTemplateNotFound() = true, want false")
	}
}

func TestIsTransportFailure(t *testing.T) {
	if !IsTransportFailure(TransportFailure("send failed", errors.New("timeout"))) {
		t.Error("IsTransportFailure() = false, want true")
	}
	if IsTransportFailure(NotFound("not found")) {
		t.Error("IsTransportFailure() = true, want false")
	}
}

func TestIsPermanentFailure(t *testing.T) {
	if !IsPermanentFailure(PermanentFailuref("delivery attempts exhausted after %d tries", 3)) {
		t.Error("IsPermanentFailure() = false, want true")
	}
	if IsPermanentFailure(TransportFailure("send failed", nil)) {
		t.Error("IsPermanentFailure() = true, want false")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "app error",
			err:  NotFound("not found"),
			want: ErrCodeNotFound,
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: "",
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetField(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation field error",
			err:  ValidationField("email", "invalid"),
			want: "email",
		},
		{
			name: "error without field",
			err:  NotFound("not found"),
			want: "",
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: "",
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetField(tt.err); got != tt.want {
				t.Errorf("GetField() = %v, want %v", got, tt.want)
			}
		})
	}
}
