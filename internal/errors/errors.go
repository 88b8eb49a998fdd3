package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error carries an HTTP-style status code alongside the message.
type Error struct {
	Message string `json:"message"`
	Cause   error  `json:"-"`
	Code    int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) String() string {
	return e.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same message and code, so sentinel
// values still match after WithCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Message == t.Message && e.Code == t.Code
}

func (e *Error) WithCause(cause error) *Error {
	return &Error{Message: e.Message, Cause: cause, Code: e.Code}
}

func New(cause error, code int, message string) *Error {
	return &Error{Message: message, Cause: cause, Code: code}
}

func Newf(cause error, code int, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Cause: cause, Code: code}
}

// Wrap keeps an existing *Error untouched and wraps anything else.
func Wrap(err error, message string, code int) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(err, code, message)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}

// GetCode returns the status code of the first *Error in the chain.
func GetCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

func RootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// Err writes err as a JSON error response.
func Err(c *gin.Context, err error) {
	code := GetCode(err)
	if code >= http.StatusInternalServerError {
		log.Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
