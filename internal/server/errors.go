package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
	quotedomain "github.com/smallbiznis/pricelist/internal/quote/domain"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

// Failure responses carry the same body everywhere:
// {"statusCode": ..., "message": ..., "error": ...}.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	switch {
	case isNotFoundError(err):
		return response(http.StatusNotFound, "not_found")
	case errors.Is(err, pricelistdomain.ErrDefaultConflict),
		errors.Is(err, productdomain.ErrDuplicateSKU):
		return response(http.StatusConflict, err.Error())
	case isInvariantError(err), isConfigurationError(err), isValidationError(err):
		return response(http.StatusBadRequest, err.Error())
	default:
		return response(http.StatusInternalServerError, "internal_error")
	}
}

func response(status int, message string) (int, errorResponse) {
	return status, errorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, pricelistdomain.ErrNotFound),
		errors.Is(err, conditiondomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, quotedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// Invariant violations are surfaced as 400s carrying the specific reason,
// so callers can tell a refused default hand-off from a malformed request.
func isInvariantError(err error) bool {
	switch {
	case errors.Is(err, pricelistdomain.ErrCannotRemoveOnlyDefault),
		errors.Is(err, pricelistdomain.ErrCannotDeleteDefault):
		return true
	default:
		return false
	}
}

func isConfigurationError(err error) bool {
	return errors.Is(err, conditiondomain.ErrInvalidConditionConfiguration)
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPriceListValidationError(err),
		isConditionValidationError(err),
		isProductValidationError(err),
		isQuoteValidationError(err):
		return true
	default:
		return false
	}
}

func isPriceListValidationError(err error) bool {
	switch err {
	case pricelistdomain.ErrInvalidOrganization,
		pricelistdomain.ErrInvalidName,
		pricelistdomain.ErrInvalidCurrency,
		pricelistdomain.ErrInvalidStatus,
		pricelistdomain.ErrInvalidTaxMode,
		pricelistdomain.ErrInvalidTaxClass,
		pricelistdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isConditionValidationError(err error) bool {
	switch err {
	case conditiondomain.ErrInvalidOrganization,
		conditiondomain.ErrInvalidPriceList,
		conditiondomain.ErrInvalidID,
		conditiondomain.ErrInvalidDiscountType,
		conditiondomain.ErrInvalidDiscountValue,
		conditiondomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidOrganization,
		productdomain.ErrInvalidSKU,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidBasePrice,
		productdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isQuoteValidationError(err error) bool {
	switch err {
	case quotedomain.ErrInvalidOrganization,
		quotedomain.ErrInvalidPriceList,
		quotedomain.ErrInvalidProduct,
		quotedomain.ErrInvalidBaseAmount,
		quotedomain.ErrInvalidDiscountType:
		return true
	default:
		return false
	}
}
