package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
)

func statusFor(err error) int {
	var verrs domain.ValidationErrors
	var verr *domain.ValidationError
	var subErr *domain.SubmissionError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict
	case errors.As(err, &verrs), errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &subErr):
		if subErr.Status != 0 {
			return http.StatusBadGateway
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody renders err for clients. Internal failures are not described.
func errorBody(err error) gin.H {
	status := statusFor(err)
	body := gin.H{"error": http.StatusText(status)}
	if status != http.StatusInternalServerError {
		body["message"] = err.Error()
	}

	var verrs domain.ValidationErrors
	var verr *domain.ValidationError
	var subErr *domain.SubmissionError
	switch {
	case errors.As(err, &verrs):
		body["fields"] = []*domain.ValidationError(verrs)
	case errors.As(err, &verr):
		body["fields"] = []*domain.ValidationError{verr}
	case errors.As(err, &subErr) && subErr.Status != 0:
		body["upstreamStatus"] = subErr.Status
		if subErr.Body != nil {
			body["upstreamBody"] = subErr.Body
		} else {
			body["upstreamBody"] = subErr.Raw
		}
	}
	return body
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorBody(err))
}
