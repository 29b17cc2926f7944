package ports

import "context"

// Probe is a boolean startup check against the hosted backend.
// A false result with a nil error means the check ran and the backend said no;
// an error means the check could not run at all.
type Probe interface {
	Name() string
	Check(ctx context.Context) (bool, error)
}
