package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/fault"
)

// httpError translates a taxonomy error into the echo error the client sees.
func httpError(err error) error {
	switch {
	case errors.Is(err, fault.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, fault.ErrNotAuthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, fault.ErrPermissionDenied), errors.Is(err, fault.ErrVerificationFailed):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, fault.ErrUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
