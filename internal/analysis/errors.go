package analysis

import (
	"errors"
	"fmt"

	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/tier"
)

// ErrNotFound indicates the requested history record does not exist or is not
// owned by the caller.
var ErrNotFound = errors.New("analysis not found")

// ValidationError rejects a request before any provider call is dispatched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PermissionError rejects a request whose feature set exceeds the caller's
// tier. The whole request is refused, nothing is silently dropped.
type PermissionError struct {
	Kind feature.Kind
	Tier tier.Tier
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("feature %q is not available on the %s tier", e.Kind, tier.DisplayName(e.Tier))
}
