package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey is a tenant's credential for an external provider (the AI service).
// The key is stored sealed; responses only ever show the display prefix.
type APIKey struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index" json:"-"`
	Provider  string    `gorm:"type:text;not null" json:"provider"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	KeySealed string    `gorm:"type:text;not null" json:"-"`
	KeyPrefix string    `gorm:"type:text;not null" json:"key_prefix"`
	CreatedBy string    `gorm:"type:text;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

func (k *APIKey) SetTenantID(tenantID string) {
	k.TenantID = tenantID
}

// AllModels lists every table managed by the service, in creation order.
func AllModels() []any {
	return []any{
		&Tenant{},
		&User{},
		&Subscription{},
		&RateLimitRecord{},
		&AuditLog{},
		&Patient{},
		&APIKey{},
	}
}
