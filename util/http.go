package util

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/types"
)

// BadRequestError is an error used to encode a request body
// or parameter that the API cannot accept
type BadRequestError struct {
	Reason string
}

// NewBadRequestError constructs a new BadRequestError
func NewBadRequestError(format string, args ...interface{}) *BadRequestError {
	return &BadRequestError{
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

// ResponseCodeFromError resolves a status code from an error.
// Anything that is not one of the named error kinds is a storage fault
func ResponseCodeFromError(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.Cause(err).(type) {
	case *db.InvalidIDError, *BadRequestError:
		return http.StatusBadRequest
	case *db.NotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error creates a standardized error response.
// Client errors report their own message; storage faults are logged
// and reported with the given generic message instead
func Error(w http.ResponseWriter, r *http.Request, originalError error, faultMessage string) {
	statusCode := ResponseCodeFromError(originalError)
	if statusCode >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().
			Err(originalError).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(faultMessage)
		ErrorWithCode(w, r, errors.New(faultMessage), statusCode)
		return
	}

	ErrorWithCode(w, r, originalError, statusCode)
}

// ErrorWithCode creates a standardized error response with a status code
func ErrorWithCode(w http.ResponseWriter, r *http.Request, originalError error, statusCode int) {
	JSON(w, r, statusCode, types.ErrorResponse{
		Success: false,
		Error:   fmt.Sprint(originalError),
	})
}

// JSON writes the value as the JSON response body with the given status code
func JSON(w http.ResponseWriter, r *http.Request, statusCode int, value interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, value)
}

// DecodeJSON decodes the request body into the value,
// reporting malformed bodies as a BadRequestError
func DecodeJSON(r *http.Request, value interface{}) error {
	err := render.DecodeJSON(r.Body, value)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}

		return NewBadRequestError("request body is not valid JSON: %s", err)
	}

	return nil
}

// LimitBody caps the size of request bodies read by the wrapped handlers
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
