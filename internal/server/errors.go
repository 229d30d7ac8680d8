package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	"github.com/landriskai/landrisk/internal/reference"
	reportdomain "github.com/landriskai/landrisk/internal/report/domain"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	"gorm.io/gorm"
)

type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandlingMiddleware maps domain errors pushed via c.Error onto HTTP
// responses. Handlers never write error bodies themselves, so every failure
// leaves through the same mapping and internal details stay opaque.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status, body := mapError(err)
		c.JSON(status, body)
	}
}

func mapError(err error) (int, apiError) {
	switch {
	case errors.Is(err, orderdomain.ErrNotFound):
		return http.StatusNotFound, apiError{Code: "order_not_found", Message: "order not found"}
	case errors.Is(err, reportdomain.ErrNotFound),
		errors.Is(err, reportdomain.ErrVerificationMismatch):
		// A wrong verification code is indistinguishable from a missing
		// report so codes cannot be probed.
		return http.StatusNotFound, apiError{Code: "report_not_found", Message: "report not found"}
	case errors.Is(err, searchcachedomain.ErrNotFound):
		return http.StatusNotFound, apiError{Code: "cache_entry_not_found", Message: "no cached result for this parcel"}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, apiError{Code: "not_found", Message: "resource not found"}
	case errors.Is(err, orderdomain.ErrInvalidTransition):
		return http.StatusConflict, apiError{Code: "invalid_order_transition", Message: "order is not in a state that allows this operation"}
	case errors.Is(err, orderdomain.ErrPaymentRefConflict):
		return http.StatusConflict, apiError{Code: "payment_ref_conflict", Message: "payment reference already recorded for another order"}
	case errors.Is(err, orderdomain.ErrInvalidRequest):
		return http.StatusBadRequest, apiError{Code: "invalid_request", Message: "request is missing required fields"}
	case errors.Is(err, reportdomain.ErrInvalidRating):
		return http.StatusBadRequest, apiError{Code: "invalid_rating", Message: "rating must be between 1 and 5"}
	case errors.Is(err, reportdomain.ErrArtifactExpired):
		return http.StatusGone, apiError{Code: "report_link_expired", Message: "the download window for this report has closed"}
	case errors.Is(err, reference.ErrAllocationExhausted):
		return http.StatusInternalServerError, apiError{Code: "internal_error", Message: "report generation failed, please retry"}
	default:
		return http.StatusInternalServerError, apiError{Code: "internal_error", Message: "something went wrong"}
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Code: "invalid_request", Message: message})
}
