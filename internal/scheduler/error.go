package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// ErrSchedulerNotFound indicates a Slurm client binary was not found
	ErrSchedulerNotFound = errors.New("slurm binary not found in PATH")

	// ErrQueryFailed indicates a sinfo/scontrol invocation failed
	ErrQueryFailed = errors.New("slurm query failed")

	// ErrQueryTimeout indicates a sinfo/scontrol invocation exceeded the query timeout
	ErrQueryTimeout = errors.New("slurm query timed out")

	// ErrInvalidVersion indicates the Slurm version string could not be parsed
	ErrInvalidVersion = errors.New("invalid slurm version")
)

// QueryError represents a failed sinfo/scontrol invocation for one partition or node
type QueryError struct {
	Command string // Command name (e.g., "sinfo", "scontrol")
	Target  string // Partition or node the query was scoped to
	Stderr  string // Captured standard error
	Err     error  // Underlying error
}

func (e *QueryError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr != "" {
		return fmt.Sprintf("%s query for %s failed: %v: %s", e.Command, e.Target, e.Err, stderr)
	}
	return fmt.Sprintf("%s query for %s failed: %v", e.Command, e.Target, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrQueryFailed) to match any QueryError
func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}

// NewQueryError creates a new QueryError
func NewQueryError(command string, target string, stderr string, err error) *QueryError {
	return &QueryError{
		Command: command,
		Target:  target,
		Stderr:  stderr,
		Err:     err,
	}
}

// IsQueryError checks if an error is a QueryError
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
