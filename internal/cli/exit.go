package cli

import "errors"

// errUnresolvedCollisions marks a run that completed but left collisions
// the user must resolve (or re-run with --force).
var errUnresolvedCollisions = errors.New("unresolved file collisions")

// Exit codes: 0 success (including all-skipped), 1 fatal resolution or
// planning error, 2 collisions detected without --force.
const (
	exitOK        = 0
	exitFatal     = 1
	exitCollision = 2
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUnresolvedCollisions):
		return exitCollision
	default:
		return exitFatal
	}
}
