package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tunedhq/tuned-core/internal/dto"
	"github.com/tunedhq/tuned-core/internal/middleware"
	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/repository"
	"github.com/tunedhq/tuned-core/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	clientID := middleware.ClientID(c)

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.orderService.Create(ctx, clientID, service.CreateOrderInput{
		ServiceID:       req.ServiceID,
		AcademicLevelID: req.AcademicLevelID,
		DeadlineID:      req.DeadlineID,
		Title:           req.Title,
		Description:     req.Description,
		WordCount:       req.WordCount,
		PageCount:       req.PageCount,
		DiscountCode:    req.DiscountCode,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	clientID := middleware.ClientID(c)

	var filter repository.OrderFilter
	if s := c.QueryParam("status"); s != "" {
		status := model.OrderStatus(s)
		filter.Status = &status
	}
	if p := c.QueryParam("paid"); p != "" {
		paid := p == "true"
		filter.Paid = &paid
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))

	orders, total, err := h.orderService.List(ctx, clientID, filter, repository.Page{Number: page, Size: size})
	if err != nil {
		return httpError(err)
	}

	resp := dto.OrderListResponse{
		Orders: make([]dto.OrderResponse, 0, len(orders)),
		Total:  total,
		Page:   page,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(o))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.Get(ctx, middleware.ClientID(c), orderID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

func (h *OrderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.SoftDelete(ctx, middleware.ClientID(c), orderID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	invoice, err := h.orderService.GetInvoice(ctx, middleware.ClientID(c), orderID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.NewInvoiceResponse(invoice))
}

func (h *OrderHandler) AddComment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	comment, err := h.orderService.AddComment(ctx, middleware.ClientID(c), orderID(c), req.Message, false)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *OrderHandler) UploadFile(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	file, err := h.orderService.UploadFile(ctx, middleware.ClientID(c), orderID(c), fileHeader.Filename, src)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, file)
}

func (h *OrderHandler) DeleteFile(c echo.Context) error {
	ctx := c.Request().Context()

	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file id")
	}

	if err := h.orderService.DeleteFile(ctx, middleware.ClientID(c), orderID(c), uint(fileID)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) CreateTicket(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ticket, err := h.orderService.CreateTicket(ctx, middleware.ClientID(c), orderID(c), req.Subject, req.Message)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

func (h *OrderHandler) RequestExtension(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ExtensionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ext, err := h.orderService.RequestExtension(ctx, middleware.ClientID(c), orderID(c), req.RequestedHours, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ext)
}

func (h *OrderHandler) RequestRevision(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RevisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := h.orderService.RequestRevision(ctx, middleware.ClientID(c), orderID(c), req.DeliveryID, req.RevisionNotes)
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *OrderHandler) Accept(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.Accept(ctx, middleware.ClientID(c), orderID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func orderID(c echo.Context) uint {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id)
}
