package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsAndGetCode(t *testing.T) {
	base := New(ErrCodeNotFound, "template %q not found", "nope")
	wrapped := fmt.Errorf("resolve: %w", base)

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct", base, ErrCodeNotFound, true},
		{"wrapped", wrapped, ErrCodeNotFound, true},
		{"other code", wrapped, ErrCodeFatal, false},
		{"plain error", errors.New("boom"), ErrCodeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := GetCode(wrapped); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(ErrCodeNetwork, cause, "synthesize %s", "tech")

	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should find the cause")
	}
	want := "NETWORK_ERROR: synthesize tech: dial tcp: timeout"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if UserMessage(err) != "synthesize tech" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}
}
