package model

import "time"

// User covers both clients and platform operators. Operators receive the
// fan-out copy of every lifecycle alert.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	Email      string `gorm:"size:255;uniqueIndex;not null"`
	Name       string `gorm:"size:100;not null"`
	IsOperator bool   `gorm:"not null;default:false"`
	IsActive   bool   `gorm:"not null;default:true"`

	// Reward-point balance, spent through redemption only.
	Points int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyWarning NotificationKind = "warning"
	NotifyError   NotificationKind = "error"
)

// Notification is one addressed in-app alert produced by the fan-out.
type Notification struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"index;not null"`
	Title     string           `gorm:"size:255;not null"`
	Message   string           `gorm:"type:text;not null"`
	Kind      NotificationKind `gorm:"size:16;not null;default:info"`
	Link      string           `gorm:"size:255"`
	IsRead    bool             `gorm:"not null;default:false"`
	CreatedAt time.Time
}
