package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	ActionAPIKeyCreated    AuditAction = "API_KEY_CREATED"
	ActionAPIKeyUpdated    AuditAction = "API_KEY_UPDATED"
	ActionAPIKeyDeleted    AuditAction = "API_KEY_DELETED"
	ActionAPIKeyViewed     AuditAction = "API_KEY_VIEWED"
	ActionLoginSucceeded   AuditAction = "LOGIN_SUCCEEDED"
	ActionLoginFailed      AuditAction = "LOGIN_FAILED"
	ActionLogout           AuditAction = "LOGOUT"
	ActionPasswordChanged  AuditAction = "PASSWORD_CHANGED"
	ActionRecoveryUsed     AuditAction = "RECOVERY_USED"
	ActionRecoveryFailed   AuditAction = "RECOVERY_FAILED"
	ActionUserCreated      AuditAction = "USER_CREATED"
	ActionTenantRegistered AuditAction = "TENANT_REGISTERED"
	ActionAIQueryConsumed  AuditAction = "AI_QUERY_CONSUMED"
	ActionAIQuotaExceeded  AuditAction = "AI_QUOTA_EXCEEDED"
	ActionAuditArchived    AuditAction = "AUDIT_ARCHIVE_REQUESTED"
)

// AuditLog is an append-only record of a security-sensitive action.
// TenantID is empty for actions taken before a tenant exists (failed logins
// for unknown emails, bootstrap).
type AuditLog struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID  string          `gorm:"type:text;index" json:"tenant_id,omitempty"`
	UserID    string          `gorm:"type:text;index" json:"user_id"`
	Action    AuditAction     `gorm:"type:text;not null" json:"action"`
	Resource  string          `gorm:"type:text" json:"resource"`
	IPAddress string          `gorm:"type:text" json:"ip_address,omitempty"`
	UserAgent string          `gorm:"type:text" json:"user_agent,omitempty"`
	Metadata  json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Timestamp time.Time       `gorm:"not null;index" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type AuditLogFilter struct {
	TenantID  string      `json:"tenant_id"`
	UserID    string      `json:"user_id"`
	Action    AuditAction `json:"action"`
	Resource  string      `json:"resource"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Limit     int         `json:"limit"`
}

// HasCriteria reports whether the filter narrows results beyond tenant and limit.
func (f AuditLogFilter) HasCriteria() bool {
	return f.UserID != "" ||
		f.Action != "" ||
		f.Resource != "" ||
		!f.StartTime.IsZero() ||
		!f.EndTime.IsZero()
}
