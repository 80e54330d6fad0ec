package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID    string     `gorm:"type:uuid;not null;index" json:"-"`
	FirstName   string     `gorm:"type:text;not null" json:"first_name"`
	LastName    string     `gorm:"type:text;not null" json:"last_name"`
	Email       string     `gorm:"type:text" json:"email,omitempty"`
	Phone       string     `gorm:"type:text" json:"phone,omitempty"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Patient) SetTenantID(tenantID string) {
	p.TenantID = tenantID
}
