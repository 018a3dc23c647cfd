package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tunedhq/tuned-core/internal/dto"
	"github.com/tunedhq/tuned-core/internal/service"
)

// OperatorHandler exposes the platform-staff actions: submitting
// deliveries, canceling orders and resolving extension requests.
type OperatorHandler struct {
	orderService service.OrderService
}

func NewOperatorHandler(orderService service.OrderService) *OperatorHandler {
	return &OperatorHandler{orderService: orderService}
}

func (h *OperatorHandler) SubmitDelivery(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename is required")
	}

	order, err := h.orderService.Deliver(ctx, orderID(c), req.Filename, req.Filename, req.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

func (h *OperatorHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.Cancel(ctx, orderID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *OperatorHandler) ListExtensionRequests(c echo.Context) error {
	ctx := c.Request().Context()

	reqs, err := h.orderService.ListPendingExtensions(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *OperatorHandler) ResolveExtension(c echo.Context) error {
	ctx := c.Request().Context()

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}

	var req dto.ResolveExtensionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resolved, err := h.orderService.ResolveExtension(ctx, uint(requestID), req.Approve)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resolved)
}
