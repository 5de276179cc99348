package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ValidationError reports a CMDB record whose directives cannot produce
// a valid desired host. The record is skipped; the run continues.
type ValidationError struct {
	Key    Key
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("host %s: invalid %s: %s", e.Key, e.Field, e.Reason)
}

// UnknownClusterError reports a desired host referencing a collector
// cluster the target does not know.
type UnknownClusterError struct {
	Key     Key
	Cluster string
}

func (e *UnknownClusterError) Error() string {
	return fmt.Sprintf("host %s: unknown collector cluster %q", e.Key, e.Cluster)
}

// IndexError reports two target hosts resolving to the same identity
// key. The state is ambiguous, so the whole run aborts.
type IndexError struct {
	Key      Key
	FirstID  string
	SecondID string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("duplicate identity key %s in target state (host ids %s and %s)", e.Key, e.FirstID, e.SecondID)
}

// FetchError wraps a failure to read one of the run's inputs.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrPendingChanges aborts a run because the target already has
// configuration changes queued from outside the sync. Forcing the run
// downgrades this to a warning.
var ErrPendingChanges = errors.New("target has pending configuration changes, re-run with force to proceed")

// TransientError marks failures worth retrying, such as network
// timeouts and server-side errors.
type TransientError interface {
	error
	Transient() bool
}

// IsTransient reports whether err looks retryable.
func IsTransient(err error) bool {
	var te TransientError
	if errors.As(err, &te) {
		return te.Transient()
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
