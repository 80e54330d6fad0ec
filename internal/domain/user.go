package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID           *string   `gorm:"type:uuid;index" json:"tenant_id"`
	Email              string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name               string    `gorm:"type:text;not null" json:"name"`
	Role               Role      `gorm:"type:text;not null" json:"role"`
	PasswordHash       string    `gorm:"type:text;not null" json:"-"`
	RecoverySecretHash *string   `gorm:"type:text" json:"-"`
	Active             bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Tenant             *Tenant   `gorm:"foreignKey:TenantID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (u *User) SetTenantID(tenantID string) {
	u.TenantID = &tenantID
}

// TenantIDValue returns the tenant id or "" for identities still in bootstrap.
func (u *User) TenantIDValue() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

// NormalizeEmail lower-cases and trims an address. Emails are unique across
// all tenants in their normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
