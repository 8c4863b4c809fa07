package tunnel

import (
	"fmt"
	"github.com/pkg/errors"
)

var (
	ErrMissingToken     = newPreconditionError("CF_API_TOKEN is not set")
	ErrMissingAccountID = newPreconditionError("a Cloudflare account ID is required")
	ErrNoConfig         = newPreconditionError("no config found, run `cftpipe setup` first")
	ErrBrokenConfig     = newPreconditionError("config is missing the domain, zone or tunnel, run `cftpipe setup` again")
	ErrMissingSlug      = newPreconditionError("usage: cftpipe destroy <slug>")
	ErrMissingDaemon    = newPreconditionError("cloudflared is not installed or not on PATH")
	ErrNoZones          = errors.New("no active zones found for this API token")
)

// PreconditionError is a missing tool, credential, config or argument. Commands stop immediately.
type PreconditionError struct {
	msg string
}

func newPreconditionError(msg string) *PreconditionError {
	return &PreconditionError{msg: msg}
}

func (e *PreconditionError) Error() string {
	return e.msg
}

// SelectionError is an interactive choice that does not name a listed option.
type SelectionError struct {
	Input string
	Max   int
}

func (e SelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q: choose a number between 1 and %d", e.Input, e.Max)
}

// UsageError is a malformed command line argument.
type UsageError struct {
	msg string
}

func newUsageError(format string, args ...interface{}) UsageError {
	return UsageError{msg: fmt.Sprintf(format, args...)}
}

func (e UsageError) Error() string {
	return e.msg
}
