package errutil

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrHydration       = errors.New("hydration error")
	ErrTransport       = errors.New("transport error")
)

type Kind uint32

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindHydration
	KindTransport
)

var kindErrs = map[Kind]error{
	KindInvalidArgument: ErrInvalidArgument,
	KindHydration:       ErrHydration,
	KindTransport:       ErrTransport,
}

// Error carries the error kind and, for HTTP failures, the status code.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var prefix string
	if kindErr, ok := kindErrs[e.Kind]; ok {
		prefix = kindErr.Error()
	} else {
		prefix = "error"
	}

	switch {
	case e.Err != nil && e.Code != 0:
		return fmt.Sprintf("%s: status %d: %v", prefix, e.Code, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("%s: status %d: %s", prefix, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	kindErr, ok := kindErrs[e.Kind]
	return ok && target == kindErr
}

func InvalidArgumentError(err error) error {
	return &Error{Kind: KindInvalidArgument, Code: http.StatusBadRequest, Err: err}
}

// ValidationError reports a request that failed validation.
func ValidationError(err error) error {
	return InvalidArgumentError(err)
}

func HydrationError(err error) error {
	return &Error{Kind: KindHydration, Err: err}
}

// HttpError reports a non-2xx response from the API.
func HttpError(code int, message string) error {
	if message == "" {
		message = http.StatusText(code)
	}
	return &Error{Kind: KindTransport, Code: code, Message: message}
}

func BadRequestError(err error) error {
	return &Error{Kind: KindInvalidArgument, Code: http.StatusBadRequest, Err: err}
}

func UnauthorizedError(err error) error {
	return &Error{Kind: KindInvalidArgument, Code: http.StatusUnauthorized, Err: err}
}

func NotFoundError(err error) error {
	return &Error{Kind: KindInvalidArgument, Code: http.StatusNotFound, Err: err}
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// ParseHttpError maps err to the status code and message of a server response.
func ParseHttpError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var e *Error
	if errors.As(err, &e) && e.Code != 0 {
		if e.Err != nil {
			return e.Code, e.Err.Error()
		}
		return e.Code, e.Message
	}

	return http.StatusInternalServerError, err.Error()
}
