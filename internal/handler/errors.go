package handler

import (
	"errors"
	"net/http"

	"reimburse/internal/service"
	"reimburse/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service-layer errors onto HTTP statuses:
// authorization denials carry the engine's reason as 403, missing
// records are 404, malformed input is 400, everything else is 500.
func respondError(c *gin.Context, err error) {
	var denied *service.DeniedError
	switch {
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, denied.Reason))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}
