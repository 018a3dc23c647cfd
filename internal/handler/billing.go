package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/tunedhq/tuned-core/internal/dto"
	"github.com/tunedhq/tuned-core/internal/middleware"
	"github.com/tunedhq/tuned-core/internal/service"
)

// BillingHandler covers the money-side operations that are not order
// lifecycle: discount validation, reward redemption and the payment
// processor's completion callback.
type BillingHandler struct {
	orderService   service.OrderService
	pricingService service.PricingService
}

func NewBillingHandler(orderService service.OrderService, pricingService service.PricingService) *BillingHandler {
	return &BillingHandler{
		orderService:   orderService,
		pricingService: pricingService,
	}
}

func (h *BillingHandler) ValidateDiscount(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ValidateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	discount, amount, err := h.pricingService.ValidateDiscount(ctx, req.Code, decimal.NewFromFloat(req.OrderTotal))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":            discount.Code,
		"type":            discount.Type,
		"value":           discount.Value.StringFixed(2),
		"discount_amount": amount.StringFixed(2),
	})
}

func (h *BillingHandler) RedeemPoints(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RedeemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	redemption, err := h.orderService.RedeemPoints(ctx, middleware.ClientID(c), req.OrderID, req.Points)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.RedemptionResponse{
		Points:   redemption.Points,
		Amount:   redemption.Amount.StringFixed(2),
		NewTotal: redemption.NewTotal.StringFixed(2),
	})
}

// PaymentCompleted is invoked by the payment processor once funds clear.
// It is the only caller that flips an order to paid.
func (h *BillingHandler) PaymentCompleted(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentCompletedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.orderService.CompletePayment(ctx, req.OrderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}
