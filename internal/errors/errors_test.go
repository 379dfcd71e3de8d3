package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("something went wrong"), expected: "Error: something went wrong"},
		{name: "validation error", err: ErrPhotoRequired, expected: "Error: photo is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestValidationErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", ErrAlreadySubmitted)

	if !errors.Is(wrapped, ErrAlreadySubmitted) {
		t.Error("wrapped error should match its sentinel")
	}
	if errors.Is(wrapped, ErrHabitNotFound) {
		t.Error("different kinds must not match")
	}
	if !IsValidation(wrapped) {
		t.Error("IsValidation should see through wrapping")
	}
	if IsValidation(errors.New("disk full")) {
		t.Error("plain errors are not validation errors")
	}
	if KindOf(wrapped) != KindAlreadySubmitted {
		t.Errorf("KindOf() = %q", KindOf(wrapped))
	}

	custom := Invalid("invalid notification time %q", "25:00")
	if !errors.Is(custom, &ValidationError{Kind: KindInvalidHabit}) {
		t.Error("Invalid() should produce an invalid_habit error")
	}
	if custom.Error() != `invalid notification time "25:00"` {
		t.Errorf("unexpected message %q", custom.Error())
	}
}
