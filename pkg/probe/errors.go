package probe

import "errors"

var (
	// ErrNotConfigured is returned when the backend URL or key is missing.
	ErrNotConfigured = errors.New("backend url or key not configured")

	// ErrUnexpectedStatus is returned for answers that are neither success nor a policy denial.
	ErrUnexpectedStatus = errors.New("unexpected backend status")
)
