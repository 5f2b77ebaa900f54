package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaintab/chaintab/internal/models"
	"github.com/chaintab/chaintab/internal/wire"
)

// statusFor maps the ledger and wire error taxonomy to HTTP status codes.
// Every failure reaches the caller with its descriptive reason; no failure
// leaves partial state behind, so there is nothing to report beyond it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyPaid),
		errors.Is(err, models.ErrCannotEditPaidItem):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientOrMismatchedBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrRelayAuthenticationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrArityMismatch),
		errors.Is(err, models.ErrEmptySet),
		errors.Is(err, models.ErrNoItemsSelected),
		errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, wire.ErrOutOfBounds),
		errors.Is(err, wire.ErrValueOverflow),
		errors.Is(err, wire.ErrUnsupportedVersion),
		errors.Is(err, wire.ErrUnsupportedBodyVersion):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error as JSON with its mapped status.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
