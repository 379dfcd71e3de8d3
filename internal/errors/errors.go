package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/proofstreak/internal/logger"
)

// ValidationKind identifies why a request was refused.
type ValidationKind string

const (
	KindPhotoRequired    ValidationKind = "photo_required"
	KindHabitNotFound    ValidationKind = "habit_not_found"
	KindAlreadySubmitted ValidationKind = "already_submitted"
	KindInvalidHabit     ValidationKind = "invalid_habit"
	KindNoActiveHabits   ValidationKind = "no_active_habits"
)

// ValidationError is returned synchronously to the caller when input is refused.
// The message is safe to show to the end user.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches any ValidationError of the same kind, so sentinels work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrPhotoRequired    = &ValidationError{Kind: KindPhotoRequired, Message: "photo is required"}
	ErrHabitNotFound    = &ValidationError{Kind: KindHabitNotFound, Message: "habit not found"}
	ErrAlreadySubmitted = &ValidationError{Kind: KindAlreadySubmitted, Message: "already submitted today"}
	ErrNoActiveHabits   = &ValidationError{Kind: KindNoActiveHabits, Message: "no active habits"}
)

// Invalid builds a validation error describing a malformed habit definition.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Kind: KindInvalidHabit, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// KindOf returns the validation kind of err, or "" if err is not a validation error.
func KindOf(err error) ValidationKind {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
