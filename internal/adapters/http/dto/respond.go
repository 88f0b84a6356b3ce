package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/quoteapp/quoted/internal/domain"
)

// GetTraceID extracts the OpenTelemetry trace ID from the request context.
// Returns the empty string when no recording span is active.
func GetTraceID(c *gin.Context) string {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.SpanContext().HasTraceID() {
		return ""
	}

	return span.SpanContext().TraceID().String()
}

// MapDomainError maps a domain error to an HTTP status code and error
// response. Backend-originated messages (domain.APIError) pass through
// verbatim with the upstream status when it is meaningful; everything else
// maps by taxonomy. Unknown errors become a generic 500.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, err.Error())

	case domain.IsAPIError(err):
		return upstreamStatus(err), NewErrorResponse(ErrorCodeUpstream, domain.APIMessage(err))

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	case errors.Is(err, domain.ErrInvalidResponse):
		return http.StatusBadGateway, NewErrorResponse(ErrorCodeUpstream, err.Error())

	default:
		// Unknown errors get a generic message to avoid leaking internals.
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// upstreamStatus picks the response status for a backend rejection. Client
// errors (4xx) pass through so callers can react to 401/404/409; anything
// else reads as a bad gateway.
func upstreamStatus(err error) int {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}

	return http.StatusBadGateway
}

// HandleError maps a domain error to an HTTP error response and writes it.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)

	if traceID := GetTraceID(c); traceID != "" {
		resp.TraceID = traceID
	}

	c.JSON(status, resp)
}

// AbortWithDomainError is HandleError for middleware: it also aborts the
// handler chain.
func AbortWithDomainError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)

	if traceID := GetTraceID(c); traceID != "" {
		resp.TraceID = traceID
	}

	c.AbortWithStatusJSON(status, resp)
}

// RespondWithErrorCode writes an error response with a specific error code.
// Use this for adapter-level errors that don't originate from domain errors.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	resp := NewErrorResponse(code, message)

	if traceID := GetTraceID(c); traceID != "" {
		resp.TraceID = traceID
	}

	c.JSON(HTTPStatusFromCode(code), resp)
}

// AbortWithErrorCode aborts the request chain with a specific error code.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	resp := NewErrorResponse(code, message)

	if traceID := GetTraceID(c); traceID != "" {
		resp.TraceID = traceID
	}

	c.AbortWithStatusJSON(HTTPStatusFromCode(code), resp)
}

// RespondWithValidationErrors writes a 400 response with field-level
// validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := NewErrorResponseWithDetails(
		ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	)

	if traceID := GetTraceID(c); traceID != "" {
		resp.TraceID = traceID
	}

	c.JSON(http.StatusBadRequest, resp)
}
