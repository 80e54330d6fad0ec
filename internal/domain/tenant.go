package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceholderTenantSlug identifies the temporary admin tenant that exists
// until the first real clinic registers.
const PlaceholderTenantSlug = "temporary-admin"

type Tenant struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name          string    `gorm:"type:text;not null" json:"name"`
	Slug          string    `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	IsPlaceholder bool      `gorm:"not null;default:false" json:"is_placeholder"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TenantOwned is implemented by every row that belongs to exactly one tenant.
type TenantOwned interface {
	SetTenantID(tenantID string)
}
