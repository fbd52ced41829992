package apierr

import (
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/coop-inventory/pkg/validator"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/zerror"
)

const InternalServerErrorCode = "INTERNAL_SERVER_ERROR"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the error response for the API.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details []FieldError   `json:"details,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = ErrorResponse{
	Error:      "an unknown error occurred",
	Code:       InternalServerErrorCode,
	StatusCode: http.StatusInternalServerError,
}

func errorToErrorResponse(err error) ErrorResponse {
	var zErr zerror.ZError
	if !errors.As(err, &zErr) {
		return InternalServerErr
	}

	res := ErrorResponse{
		Error:      zErr.Msg(),
		Code:       zErr.Code(),
		Meta:       zErr.Meta(),
		StatusCode: ZErrorStatusToHTTPStatus(zErr.Status()),
	}

	// request problems below a validation error become field details
	var validationErrs govalidator.ValidationErrors
	var reqErr *openapi3filter.RequestError
	var bindErr *runtime.InvalidParamFormatError
	switch {
	case errors.As(err, &validationErrs):
		res.Details = make([]FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			res.Details[i] = FieldError{
				Field:   fe.Field(),
				Message: validator.ValidationErrorMessage(fe),
			}
		}
	case errors.As(err, &reqErr):
		res.Details = []FieldError{requestFieldError(reqErr)}
	case errors.As(err, &bindErr):
		res.Details = []FieldError{{Field: bindErr.ParamName, Message: bindErr.Err.Error()}}
	}

	return res
}

func requestFieldError(reqErr *openapi3filter.RequestError) FieldError {
	field := "body"
	if reqErr.Parameter != nil {
		field = reqErr.Parameter.Name
	}

	msg := reqErr.Reason
	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		if ptr := schemaErr.JSONPointer(); len(ptr) > 0 && reqErr.Parameter == nil {
			field = ptr[0]
		}
		msg = schemaErr.Reason
	} else if msg == "" && reqErr.Err != nil {
		msg = reqErr.Err.Error()
	}

	return FieldError{Field: field, Message: msg}
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case zerror.StatusBadRequest:
		return http.StatusBadRequest
	case zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	case zerror.StatusTimeout:
		return http.StatusGatewayTimeout
	case zerror.StatusNotImplemented:
		return http.StatusNotImplemented
	case zerror.StatusBadGateway:
		return http.StatusBadGateway
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
