package wsched

import "errors"

// ErrorCode identifies the ABI-stable error enumeration from the embedding
// boundary (see package doc and spec §6). It exists so a future cgo/ABI
// layer can translate a Go error into a small C-compatible enum without
// re-deriving the mapping.
type ErrorCode int

const (
	CodeSuccess ErrorCode = iota
	CodeOutOfMemory
	CodeInvalidParam
	CodeInvalidHandle
	CodeTaskNotFound
	CodeAlreadyRunning
)

func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeOutOfMemory:
		return "OUT_OF_MEMORY"
	case CodeInvalidParam:
		return "INVALID_PARAM"
	case CodeInvalidHandle:
		return "INVALID_HANDLE"
	case CodeTaskNotFound:
		return "TASK_NOT_FOUND"
	case CodeAlreadyRunning:
		return "ALREADY_RUNNING"
	default:
		return "UNKNOWN"
	}
}

// codedError pairs a sentinel error with its ABI error code.
type codedError struct {
	msg  string
	code ErrorCode
}

func (e *codedError) Error() string { return e.msg }

// Code returns the ABI-stable error code for err: CodeSuccess if err is
// nil, CodeInvalidParam if err is not one produced by this package.
func Code(err error) ErrorCode {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	if err == nil {
		return CodeSuccess
	}
	return CodeInvalidParam
}

// Sentinel errors returned at the core's boundary. Internal task failures
// (a panicking closure) are contained inside the worker loop and never
// surface as one of these — see taskRecord.execute.
var (
	// ErrAlreadyRunning is returned by Start when the scheduler is not stopped.
	ErrAlreadyRunning = &codedError{"wsched: scheduler already running", CodeAlreadyRunning}

	// ErrNotStarted is returned by Submit when the scheduler has not been started.
	ErrNotStarted = &codedError{"wsched: scheduler not started", CodeInvalidParam}

	// ErrStopped is returned by Submit when the scheduler is stopping or stopped.
	ErrStopped = &codedError{"wsched: scheduler stopped", CodeInvalidParam}

	// ErrNotStopped is returned by Destroy while the scheduler is running.
	ErrNotStopped = &codedError{"wsched: scheduler not stopped", CodeInvalidParam}

	// ErrTaskNotFound carries CodeTaskNotFound for a task id with no registry
	// entry. No operation of this package returns it: Handle.Join and
	// Handle.Poll treat a missing entry as a finished task.
	ErrTaskNotFound = &codedError{"wsched: task not found", CodeTaskNotFound}

	// ErrInvalidHandle carries CodeInvalidHandle for a Handle used against a
	// scheduler other than the one that produced it. No operation of this
	// package returns it: a Handle always resolves against its own scheduler.
	ErrInvalidHandle = &codedError{"wsched: handle belongs to a different scheduler", CodeInvalidHandle}

	// ErrOutOfMemory carries CodeOutOfMemory for a failed task or deque
	// allocation. No operation of this package returns it.
	ErrOutOfMemory = &codedError{"wsched: allocation failed", CodeOutOfMemory}

	// ErrInvalidParam is returned when a caller passes a nil closure to Submit.
	ErrInvalidParam = &codedError{"wsched: invalid parameter", CodeInvalidParam}
)
