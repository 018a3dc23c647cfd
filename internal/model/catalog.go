package model

import "github.com/shopspring/decimal"

type Service struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;uniqueIndex;not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

type AcademicLevel struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;uniqueIndex;not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// Deadline is a named turnaround bucket. Hours keys both the rate lookup
// and the due-date computation at order creation.
type Deadline struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;uniqueIndex;not null"`
	Hours    int    `gorm:"not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// PriceRate is one row of the rate table: the per-page price for an exact
// (service, level, deadline) triple. No fallback rate exists; a missing
// row means the combination cannot be ordered.
type PriceRate struct {
	ID              uint            `gorm:"primaryKey"`
	ServiceID       uint            `gorm:"uniqueIndex:ix_rate_triple,priority:1;not null"`
	AcademicLevelID uint            `gorm:"uniqueIndex:ix_rate_triple,priority:2;not null"`
	DeadlineID      uint            `gorm:"uniqueIndex:ix_rate_triple,priority:3;not null"`
	PricePerPage    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsActive        bool            `gorm:"not null;default:true"`
}
