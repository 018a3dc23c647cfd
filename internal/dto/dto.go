package dto

import (
	"time"

	"github.com/tunedhq/tuned-core/internal/model"
)

type CreateOrderRequest struct {
	ServiceID       uint    `json:"service_id"`
	AcademicLevelID uint    `json:"academic_level_id"`
	DeadlineID      uint    `json:"deadline_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	WordCount       int     `json:"word_count"`
	PageCount       float64 `json:"page_count"`
	DiscountCode    string  `json:"discount_code,omitempty"`
}

type CommentRequest struct {
	Message string `json:"message"`
}

type TicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ExtensionRequest struct {
	RequestedHours int    `json:"requested_hours"`
	Reason         string `json:"reason"`
}

type RevisionRequest struct {
	DeliveryID    uint   `json:"delivery_id"`
	RevisionNotes string `json:"revision_notes"`
}

type RedeemRequest struct {
	OrderID uint `json:"order_id"`
	Points  int  `json:"points"`
}

type ValidateDiscountRequest struct {
	Code       string  `json:"code"`
	OrderTotal float64 `json:"order_total,omitempty"`
}

type DeliveryRequest struct {
	Filename string `json:"filename"`
	Note     string `json:"note,omitempty"`
}

type ResolveExtensionRequest struct {
	Approve bool `json:"approve"`
}

type PaymentCompletedRequest struct {
	OrderID uint `json:"order_id"`
}

type OrderResponse struct {
	ID          uint              `json:"id"`
	OrderNumber string            `json:"order_number"`
	Title       string            `json:"title"`
	Status      model.OrderStatus `json:"status"`
	WordCount   int               `json:"word_count"`
	PageCount   float64           `json:"page_count"`
	TotalPrice  string            `json:"total_price"`
	Paid        bool              `json:"paid"`
	DueDate     time.Time         `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`

	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

type InvoiceResponse struct {
	InvoiceNumber string    `json:"invoice_number"`
	Subtotal      string    `json:"subtotal"`
	Discount      string    `json:"discount"`
	Tax           string    `json:"tax"`
	Total         string    `json:"total"`
	DueDate       time.Time `json:"due_date"`
	Paid          bool      `json:"paid"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
}

type RedemptionResponse struct {
	Points   int    `json:"points"`
	Amount   string `json:"discount_amount"`
	NewTotal string `json:"new_total"`
}

func NewOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Title:       o.Title,
		Status:      o.Status,
		WordCount:   o.WordCount,
		PageCount:   o.PageCount,
		TotalPrice:  o.TotalPrice.StringFixed(2),
		Paid:        o.Paid,
		DueDate:     o.DueDate,
		CreatedAt:   o.CreatedAt,
	}
	if o.Invoice != nil {
		inv := NewInvoiceResponse(o.Invoice)
		resp.Invoice = &inv
	}
	return resp
}

func NewInvoiceResponse(inv *model.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceNumber: inv.InvoiceNumber,
		Subtotal:      inv.Subtotal.StringFixed(2),
		Discount:      inv.Discount.StringFixed(2),
		Tax:           inv.Tax.StringFixed(2),
		Total:         inv.Total.StringFixed(2),
		DueDate:       inv.DueDate,
		Paid:          inv.Paid,
	}
}
