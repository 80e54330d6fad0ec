package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanType string

const (
	PlanFree       PlanType = "FREE"
	PlanPro        PlanType = "PRO"
	PlanEnterprise PlanType = "ENTERPRISE"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionTrialing SubscriptionStatus = "TRIALING"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

// UnlimitedQuota is the sentinel limit for plans without a cap.
const UnlimitedQuota = -1

// ActiveSubscriptionStatuses are the statuses under which usage may be consumed.
var ActiveSubscriptionStatuses = []SubscriptionStatus{SubscriptionActive, SubscriptionTrialing}

type Subscription struct {
	ID                 string             `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID           string             `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PlanType           PlanType           `gorm:"type:text;not null" json:"plan_type"`
	Status             SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	MaxPatients        int                `gorm:"not null" json:"max_patients"`
	MaxUsers           int                `gorm:"not null" json:"max_users"`
	AIQueriesLimit     int                `gorm:"not null" json:"ai_queries_limit"`
	AIQueriesUsed      int                `gorm:"not null;default:0" json:"ai_queries_used"`
	CurrentPeriodStart time.Time          `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `gorm:"not null" json:"current_period_end"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Subscription) SetTenantID(tenantID string) {
	s.TenantID = tenantID
}

// PeriodLength is the length of the current billing period.
func (s *Subscription) PeriodLength() time.Duration {
	return s.CurrentPeriodEnd.Sub(s.CurrentPeriodStart)
}
