package splash

import "github.com/aretw0/splash/pkg/domain"

// ProgressOf derives the presentation view of a snapshot.
func ProgressOf(s domain.Snapshot) domain.Progress {
	return domain.ProgressOf(s)
}
