// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError is used for request tracking when an operation returns no error.
	CategoryNoError Category = iota
	// CategoryBadInput The client sends some invalid data in the request,
	// for example, missing or incorrect content in the payload or parameters.
	CategoryBadInput
	// CategoryNotAuthorized The caller holds no usable access grant for the requested
	// resource; a download that comes back absent after an access request maps here,
	// since an elapsed access window is the common cause.
	CategoryNotAuthorized
	// CategoryNotFound The requested profile, artifact or exchange does not exist
	CategoryNotFound
	// CategoryCorruptContainer The decrypted payload failed the container signature check
	CategoryCorruptContainer
	// CategoryPartialSubmission An exchange failed after ciphertext was already uploaded;
	// earlier steps are left in place, distinguishable from a from-scratch failure
	CategoryPartialSubmission
	// CategoryUpstreamUnavailable A collaborating service returned non-2xx or the connection failed
	CategoryUpstreamUnavailable
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryBadInput:
		return "CategoryBadInput"
	case CategoryNotAuthorized:
		return "CategoryNotAuthorized"
	case CategoryNotFound:
		return "CategoryNotFound"
	case CategoryCorruptContainer:
		return "CategoryCorruptContainer"
	case CategoryPartialSubmission:
		return "CategoryPartialSubmission"
	case CategoryUpstreamUnavailable:
		return "CategoryUpstreamUnavailable"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents service specific type that
// is used all over the services.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// IsRetryable reports whether the failure kind is worth retrying.
// Only upstream unavailability qualifies; authorization and container
// corruption never resolve on retry.
func IsRetryable(err error) bool {
	return Is(err, CategoryUpstreamUnavailable)
}

// GeneralError returns a general service error
// this error message sent to the user is "Message could not be processed"
// the error passed is logged in the logger
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Message could not be processed",
		Err:      err,
	}
}

// NotFoundError returns an error with category NotFound
// the error message provided is returned to the user
// the err object provided is logged in logger
func NotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("not found:" + message)
	}
	return &ServiceError{
		Category: CategoryNotFound,
		Message:  message,
		Err:      err,
	}
}

// BadRequestError returns an error with category BadInput
// the error message provided is returned to the user
// the error object provided is logged in logger
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request:" + message)
	}
	return &ServiceError{
		Category: CategoryBadInput,
		Message:  message,
		Err:      err,
	}
}

// NotAuthorizedError returns an error with category NotAuthorized
// the error message provided is returned to the user
// the error object provided is logged in logger
func NotAuthorizedError(err error, message string) error {
	if err == nil {
		err = errors.New("not authorized")
	}
	return &ServiceError{
		Category: CategoryNotAuthorized,
		Message:  message,
		Err:      err,
	}
}

// CorruptContainerError returns an error with category CorruptContainer
func CorruptContainerError(err error, message string) error {
	if err == nil {
		err = errors.New("corrupt container:" + message)
	}
	return &ServiceError{
		Category: CategoryCorruptContainer,
		Message:  message,
		Err:      err,
	}
}

// PartialSubmissionError returns an error with category PartialSubmission.
// Used when an exchange fails after ciphertext was uploaded, so the caller
// can tell the difference from a failure before anything was stored.
func PartialSubmissionError(err error, message string) error {
	if err == nil {
		err = errors.New("partially submitted:" + message)
	}
	return &ServiceError{
		Category: CategoryPartialSubmission,
		Message:  message,
		Err:      err,
	}
}

// UpstreamError returns an error with category UpstreamUnavailable
// the error message provided is returned to the user
// the error object provided is logged in logger
func UpstreamError(err error, message string) error {
	if err == nil {
		err = errors.New("upstream unavailable:" + message)
	}
	return &ServiceError{
		Category: CategoryUpstreamUnavailable,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryBadInput:
		return http.StatusBadRequest
	case CategoryNotAuthorized:
		return http.StatusUnauthorized
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryCorruptContainer:
		return http.StatusUnprocessableEntity
	case CategoryPartialSubmission:
		return http.StatusBadGateway
	case CategoryUpstreamUnavailable:
		return http.StatusBadGateway
	case CategoryGeneralError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
