package downloadstation

import "fmt"

// ConfigurationError reports invalid client construction input. It is
// returned before any network I/O happens.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// InvalidInputError reports invalid call arguments. Operations return
// it without issuing a request.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Msg
}

// AuthenticationError reports a rejected login. Code is the upstream
// error code when the server supplied one, zero otherwise.
type AuthenticationError struct {
	Code int
	Msg  string
}

func (e *AuthenticationError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("authentication failed: code=%d, %s", e.Code, e.Msg)
	}
	return "authentication failed: " + e.Msg
}

// APIError reports an upstream rejection of an authenticated operation.
// Errors carries per-task failures when the server returned them.
type APIError struct {
	Code    int
	Message string
	Errors  *TaskOperation
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: code=%d, %s", e.Code, e.Message)
}

// InvalidResponseError reports an envelope that violates the expected
// shape: success without data, failure without a structured error, or
// an undecodable body.
type InvalidResponseError struct {
	Msg string
}

func (e *InvalidResponseError) Error() string {
	return "invalid response: " + e.Msg
}

// NetworkError wraps a transport-level failure, including timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TaskModificationError reports a failed lifecycle operation when the
// server gave no structured error code.
type TaskModificationError struct {
	Op string
	ID string
}

func (e *TaskModificationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("failed to %s tasks", e.Op)
	}
	return fmt.Sprintf("failed to %s download task id: %s", e.Op, e.ID)
}

// TaskCreationError reports a failed task creation when the server gave
// no structured error code.
type TaskCreationError struct {
	Source string
}

func (e *TaskCreationError) Error() string {
	return "failed to create download task: " + e.Source
}
