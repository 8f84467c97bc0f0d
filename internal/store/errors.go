package store

import "github.com/expense-share/client/internal/api"

// OpError is returned by store operations that failed. Message is the text
// the store also puts into the matching error cell.
type OpError struct {
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

// loadFailure is used by fetches that ignore the response body: HTTP failures
// get the fixed message, transport failures keep their own text.
func loadFailure(err error, fixed string) *OpError {
	msg := fixed
	if api.StatusCode(err) == 0 && err.Error() != "" {
		msg = err.Error()
	}
	return &OpError{Message: msg, Err: err}
}

// mutationFailure prefers the server's detail over the fixed message.
func mutationFailure(err error, fixed string) *OpError {
	if detail := api.Detail(err); detail != "" {
		return &OpError{Message: detail, Err: err}
	}
	return loadFailure(err, fixed)
}
