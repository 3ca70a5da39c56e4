package weberr

import "net/http"

type ErrorResponse struct {
	Error string `json:"error"`
}

type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	opts = append(opts, WithResponse(&ErrorResponse{msg}, status))
	return Wrap(&RequestError{Err: err}, opts...)
}

const (
	msgNotFound     = "the resource could not be found"
	msgUnauthorized = "not authorized to access resource"
	msgInternal     = "the server encountered a problem and could not process your request"
	msgRateLimited  = "rate limit exceeded, retry later"
)

func NotFound(err error, opts ...Opt) error {
	return NewError(err, msgNotFound, http.StatusNotFound, opts...)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(err, msgUnauthorized, http.StatusUnauthorized, opts...)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(err, msgInternal, http.StatusInternalServerError, opts...)
}

// BadRequest answers 400 with the error text itself, which callers build from validation output.
func BadRequest(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusBadRequest, opts...)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(err, msgRateLimited, http.StatusTooManyRequests, opts...)
}
