package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID              uint   `gorm:"primaryKey"`
	OrderNumber     string `gorm:"size:20;uniqueIndex;not null"`
	ClientID        uint   `gorm:"index:ix_order_client_status,priority:1;not null"`
	ServiceID       uint   `gorm:"not null"`
	AcademicLevelID uint   `gorm:"not null"`
	DeadlineID      uint   `gorm:"not null"`

	Title       string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text;not null"`
	WordCount   int     `gorm:"not null"`
	PageCount   float64 `gorm:"not null"`

	// Pricing snapshot. Mutated only through pricing operations
	// (discount application, reward redemption).
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Status OrderStatus `gorm:"size:32;index:ix_order_client_status,priority:2;not null"`
	Paid   bool        `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DueDate   time.Time `gorm:"index;not null"`

	// Soft delete. Deleted orders stay around for audit but are excluded
	// from listings and sweeps.
	IsActive  bool `gorm:"not null;default:true"`
	DeletedAt *time.Time

	Comments   []OrderComment     `gorm:"constraint:OnDelete:CASCADE"`
	Files      []OrderFile        `gorm:"constraint:OnDelete:CASCADE"`
	Tickets    []SupportTicket    `gorm:"constraint:OnDelete:CASCADE"`
	Deliveries []OrderDelivery    `gorm:"constraint:OnDelete:CASCADE"`
	Extensions []ExtensionRequest `gorm:"constraint:OnDelete:CASCADE"`
	Invoice    *Invoice           `gorm:"constraint:OnDelete:CASCADE"`
}

// NewOrderNumber returns a fresh public order number, ORD-<8 hex>.
// Uniqueness is backed by the unique index; numbers are never reused.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// PendingExtension returns the unresolved extension request, if any.
func (o *Order) PendingExtension() *ExtensionRequest {
	for i := range o.Extensions {
		if o.Extensions[i].Status == ExtensionPending {
			return &o.Extensions[i]
		}
	}
	return nil
}

type OrderComment struct {
	ID           uint   `gorm:"primaryKey"`
	OrderID      uint   `gorm:"index;not null"`
	UserID       uint   `gorm:"not null"`
	Message      string `gorm:"type:text;not null"`
	FromOperator bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

type OrderFile struct {
	ID         uint   `gorm:"primaryKey"`
	OrderID    uint   `gorm:"index;not null"`
	Filename   string `gorm:"size:255;not null"`
	StorageKey string `gorm:"size:255;not null"`
	Size       int64
	FromClient bool `gorm:"not null;default:true"`
	UploadedAt time.Time
}

type OrderDelivery struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index;not null"`
	Filename    string `gorm:"size:255;not null"`
	StorageKey  string `gorm:"size:255;not null"`
	Note        string `gorm:"type:text"`
	DeliveredAt time.Time
}

type SupportTicketStatus string

const (
	TicketOpen       SupportTicketStatus = "open"
	TicketInProgress SupportTicketStatus = "in_progress"
	TicketClosed     SupportTicketStatus = "closed"
)

type SupportTicket struct {
	ID        uint                `gorm:"primaryKey"`
	OrderID   uint                `gorm:"index;not null"`
	UserID    uint                `gorm:"not null"`
	Subject   string              `gorm:"size:255;not null"`
	Message   string              `gorm:"type:text;not null"`
	Status    SupportTicketStatus `gorm:"size:32;not null;default:open"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionDenied   ExtensionStatus = "denied"
)

// ExtensionRequest models a client's ask for more time as its own row
// rather than a flag on the order, so "at most one pending per order"
// is checked against real state.
type ExtensionRequest struct {
	ID             uint            `gorm:"primaryKey"`
	OrderID        uint            `gorm:"index;not null"`
	Status         ExtensionStatus `gorm:"size:16;index;not null;default:pending"`
	RequestedHours int             `gorm:"not null"`
	Reason         string          `gorm:"type:text;not null"`
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}
