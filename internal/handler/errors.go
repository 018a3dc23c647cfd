package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/service"
)

// httpError maps domain errors onto HTTP statuses. The error text is safe
// to show: services never put other clients' identifiers into messages.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrRateNotFound),
		errors.Is(err, service.ErrDiscountInvalid),
		errors.Is(err, service.ErrInsufficientPoints),
		errors.Is(err, service.ErrOrderAlreadyPaid),
		errors.Is(err, service.ErrInvalidTotal),
		errors.Is(err, service.ErrExtensionPending):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrIllegalTransition),
		errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}
