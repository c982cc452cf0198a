package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNothingToBackUp, ExitUser),
			want: "nothing to back up",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrInvalidConfig), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
		{
			name: "success code with error",
			err:  NewExitError(errors.New("unexpected"), ExitSuccess),
			want: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("validating: %w", ErrInvalidConfig)
	err := NewConfigError(wrapped)

	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("errors.Is should find ErrInvalidConfig through ExitError")
	}
	if err.Code != ExitUser {
		t.Errorf("NewConfigError code = %d, want %d", err.Code, ExitUser)
	}
	if err.Suggestion == "" {
		t.Error("NewConfigError should carry a suggestion")
	}
}

func TestExitError_As(t *testing.T) {
	var target *ExitError
	err := fmt.Errorf("outer: %w", NewSystemError(errors.New("copy failed"), "check the destination is writable"))

	if !errors.As(err, &target) {
		t.Fatal("errors.As should find the ExitError in the chain")
	}
	if target.Code != ExitSystem {
		t.Errorf("Code = %d, want %d", target.Code, ExitSystem)
	}
}
