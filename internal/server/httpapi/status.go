package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/authcore/internal/common"
)

// httpStatus is the explicit mapping table from the error taxonomy to status
// codes. Matching is by category, so new leaf errors map without changes here.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) fail(c echo.Context, err error) error {
	status := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		// Do not leak internals; details go to the log.
		s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		msg = http.StatusText(status)
	}
	return c.JSON(status, errorResponse{Success: false, Message: msg})
}
