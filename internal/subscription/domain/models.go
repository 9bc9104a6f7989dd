// Package domain contains persistence models for user subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/plan"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription captures a user's plan. Rows are written by the billing
// webhook handler; this service only reads them.
type Subscription struct {
	ID               snowflake.ID       `gorm:"primaryKey"`
	UserID           string             `gorm:"type:text;not null;uniqueIndex"`
	Plan             plan.Tier          `gorm:"type:text;not null"`
	Status           SubscriptionStatus `gorm:"type:text;not null"`
	CurrentPeriodEnd *time.Time         `gorm:""`
	ProviderRef      *string            `gorm:"type:text"`
	CreatedAt        time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
