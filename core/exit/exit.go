// Package exit carries process exit codes alongside errors so commands
// can signal partial failure without printing twice.
package exit

// Codes returned by the sync commands.
const (
	CodeOK      = 0
	CodeFatal   = 1
	CodePartial = 2
)

// Error wraps an error with the exit code the process should use.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error carrying the given code.
func New(code int, err error) *Error {
	return &Error{Code: code, Err: err}
}
