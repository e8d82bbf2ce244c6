package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/utilities"
)

// respondError maps a manager failure to an HTTP response. Partial failures
// never reach here; handlers turn those into a success body with a warning.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})

	case apperr.IsInvalidTransition(err):
		c.JSON(http.StatusUnprocessableEntity, utilities.ErrorResponse{Error: err.Error()})

	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})

	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: err.Error()})

	case apperr.IsBusy(err):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
	}
}
