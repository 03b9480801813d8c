package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/pkg/apierror"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError is the single place domain errors become HTTP responses.
// NotFound errors map to 404, validation/conflict errors to 400, everything
// else is logged in full and surfaced as an opaque 500.
func respondError(c *gin.Context, traceId string, err error) {
	var stockErr products.InsufficientStockError

	switch {
	case errors.Is(err, customers.ErrNotFound),
		errors.Is(err, products.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, orders.ErrCustomerNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, apierror.New(http.StatusNotFound, err.Error()))

	case errors.As(err, &stockErr),
		errors.Is(err, customers.ErrEmailExists),
		errors.Is(err, customers.ErrHasOrders),
		errors.Is(err, orders.ErrNoItems):
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, err.Error()))

	default:
		slog.Error("unexpected error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			apierror.New(http.StatusInternalServerError, "An unexpected error occurred"))
	}
}

// bindAndValidate decodes the JSON body into dst and runs struct validation,
// writing the 400 response itself when either step fails.
func (h *Handler) bindAndValidate(c *gin.Context, traceId string, dst any) bool {
	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId),
			slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest,
			apierror.New(http.StatusBadRequest, "Request body too large."))
		return false
	}

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest,
			apierror.New(http.StatusBadRequest, "Invalid JSON payload"))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var fieldMessages []string
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, vErr := range vErrs {
				fieldMessages = append(fieldMessages, fmt.Sprintf("%s: %s", vErr.Field(), vErr.Tag()))
			}
		} else {
			fieldMessages = append(fieldMessages, "Validation failed")
		}

		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.NewValidation(fieldMessages))
		return false
	}
	return true
}
