package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

// AnalysisError is the body shape of the analyze-company endpoint:
// {"success": false, "error": "..."}. Browser clients read `error` verbatim.
type AnalysisError struct {
	Success bool   `json:"success"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (a *AnalysisError) Code() int {
	return a.Status
}

var (
	MalformedJSONError  = NewSimple(400, "Malformed JSON body")
	MalformedBodyError  = NewSimple(400, "Malformed request body")
	InternalServerError = NewSimple(500, "Internal server error")
	NotFoundError       = NewSimple(404, "Resource not found")
	InvalidIDError      = NewSimple(400, "The provided ID is invalid, IDs are usually int64 > 0")

	/*
	 * Used for authentications
	 */
	UnauthorizedError           = NewSimple(401, "Unauthorized")
	InvalidAuthTokenError       = NewSimple(401, "Invalid or expired authentication token")
	MissingAccessError          = NewSimple(403, "Missing access")
	UserAlreadyExistsError      = NewSimple(400, "User already exists")
	UserAlreadyConfirmedError   = NewSimple(400, "User is already confirmed")
	IDPInvalidPasswordError     = NewSimple(400, "Provided password does not meet requirements")
	IDPExistingEmailError       = NewSimple(400, "Email already exists")
	IDPUserNotFoundError        = NewSimple(404, "User not found")
	IDPUserNotConfirmedError    = NewSimple(400, "User is not confirmed yet")
	IDPCredentialsMismatchError = NewSimple(400, "Credentials mismatch")
	IDPConfirmCodeMismatchError = NewSimple(400, "Confirmation code mismatch")
	IDPConfirmCodeExpiredError  = NewSimple(400, "Confirmation code has expired")
	IDPInvalidParameterError    = NewSimple(400, "Invalid parameters provided, the user is likely already verified")

	/*
	 * Used by the analysis pipeline
	 */
	URLRequiredError       = NewAnalysisError(400, "URL required")
	InvalidURLError        = NewAnalysisError(400, "Invalid URL")
	RateLimitedError       = NewAnalysisError(429, "Rate limit exceeded. Please try again later.")
	PaymentRequiredError   = NewAnalysisError(402, "Payment required. Please add credits to your workspace.")
	ParseFailedError       = NewAnalysisError(500, "Failed to parse AI analysis")
	AnalysisFailedError    = NewAnalysisError(500, "Unknown error")
	AnalysisForbiddenError = NewAnalysisError(403, "You are missing permissions to perform this action")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "hasupper":
			problems[field] = append(problems[field], "Value must have at least one uppercase character")
		case "haslower":
			problems[field] = append(problems[field], "Value must have at least one lowercase character")
		case "hasdigit":
			problems[field] = append(problems[field], "Value must have at least one number")
		case "hasspecial":
			problems[field] = append(problems[field], "Value must have at least one special character")
		case "email":
			problems[field] = append(problems[field], "Value must be a valid email address")
		case "weburl":
			problems[field] = append(problems[field], "Value must be a website URL")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

// FromValidationErrorAsAnalysis flattens a validation failure into the
// analyze-company body shape, which only carries a single message.
func FromValidationErrorAsAnalysis(err error) *AnalysisError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return InvalidURLError
	}

	fe := ve[0]
	switch {
	case fe.Tag() == "required" && strings.EqualFold(fe.Field(), "url"):
		return URLRequiredError
	case fe.Tag() == "weburl":
		return InvalidURLError
	}
	return NewAnalysisError(http.StatusBadRequest, "Invalid value for '%s'", fe.Field())
}

// AsAnalysisError carries the message of any error response over to the
// analyze-company body shape.
func AsAnalysisError(status int, err ErrorResponse) *AnalysisError {
	switch e := err.(type) {
	case *AnalysisError:
		return &AnalysisError{Status: status, Message: e.Message}
	case *APIError:
		return &AnalysisError{Status: status, Message: e.Message}
	}
	return &AnalysisError{Status: status, Message: http.StatusText(status)}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewAnalysisError(status int, msg string, args ...any) *AnalysisError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &AnalysisError{Status: status, Message: msg}
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Missing required parameter '%s'", name)
}

func NewPermissionError(perm int64) *APIError {
	return NewSimple(http.StatusForbidden, "Missing permission: %d", perm)
}
