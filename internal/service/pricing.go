package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/model"
	"github.com/tunedhq/tuned-core/internal/repository"
)

// Quote is a resolved price before any order exists.
type Quote struct {
	Service       *model.Service
	AcademicLevel *model.AcademicLevel
	Deadline      *model.Deadline
	PricePerPage  decimal.Decimal
	Subtotal      decimal.Decimal
}

// PricingService resolves rates and validates discount codes. It never
// mutates anything; usage counters move only inside the order-creation
// transaction.
type PricingService interface {
	ResolvePrice(ctx context.Context, serviceID, levelID, deadlineID uint, pageCount float64) (*Quote, error)
	// ValidateDiscount runs the ordered validity checks and returns the
	// code plus the amount it would shave off the given subtotal.
	ValidateDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (*model.Discount, decimal.Decimal, error)
}

type pricingServiceImpl struct {
	catalog   repository.CatalogRepository
	discounts repository.DiscountRepository
}

func NewPricingService(catalog repository.CatalogRepository, discounts repository.DiscountRepository) PricingService {
	return &pricingServiceImpl{
		catalog:   catalog,
		discounts: discounts,
	}
}

func (s *pricingServiceImpl) ResolvePrice(ctx context.Context, serviceID, levelID, deadlineID uint, pageCount float64) (*Quote, error) {
	if pageCount <= 0 {
		return nil, fmt.Errorf("%w: page count must be positive", ErrValidation)
	}

	svc, err := s.catalog.ActiveService(ctx, serviceID)
	if err != nil {
		return nil, lookupErr(err, "service")
	}
	level, err := s.catalog.ActiveLevel(ctx, levelID)
	if err != nil {
		return nil, lookupErr(err, "academic level")
	}
	deadline, err := s.catalog.ActiveDeadline(ctx, deadlineID)
	if err != nil {
		return nil, lookupErr(err, "deadline")
	}

	rate, err := s.catalog.ActiveRate(ctx, serviceID, levelID, deadlineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateNotFound
		}
		return nil, err
	}

	return &Quote{
		Service:       svc,
		AcademicLevel: level,
		Deadline:      deadline,
		PricePerPage:  rate.PricePerPage,
		Subtotal:      rate.PricePerPage.Mul(decimal.NewFromFloat(pageCount)),
	}, nil
}

func (s *pricingServiceImpl) ValidateDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (*model.Discount, decimal.Decimal, error) {
	discount, err := s.discounts.FindActiveByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, fmt.Errorf("%w: unknown code", ErrDiscountInvalid)
		}
		return nil, decimal.Zero, err
	}

	// Checks run in a fixed order; the first failure wins and nothing is
	// mutated on any failure.
	now := time.Now().UTC()
	if now.Before(discount.ValidFrom) {
		return nil, decimal.Zero, fmt.Errorf("%w: not yet active", ErrDiscountInvalid)
	}
	if discount.ValidTo != nil && now.After(*discount.ValidTo) {
		return nil, decimal.Zero, fmt.Errorf("%w: expired", ErrDiscountInvalid)
	}
	if discount.UsageLimit != nil && discount.TimesUsed >= *discount.UsageLimit {
		return nil, decimal.Zero, fmt.Errorf("%w: usage limit reached", ErrDiscountInvalid)
	}
	if subtotal.LessThan(discount.MinOrderValue) {
		return nil, decimal.Zero, fmt.Errorf("%w: order below minimum value %s", ErrDiscountInvalid, discount.MinOrderValue)
	}

	return discount, DiscountAmount(discount, subtotal), nil
}

// DiscountAmount computes what a code takes off a subtotal: percentage of
// the subtotal or a fixed amount, clamped to the code's cap when one is
// configured.
func DiscountAmount(discount *model.Discount, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	if discount.Type == model.DiscountPercentage {
		amount = subtotal.Mul(discount.Value).Div(decimal.NewFromInt(100))
	} else {
		amount = discount.Value
	}
	if discount.MaxDiscountValue != nil && amount.GreaterThan(*discount.MaxDiscountValue) {
		amount = *discount.MaxDiscountValue
	}
	return amount
}

func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found or inactive", ErrValidation, what)
	}
	return err
}
