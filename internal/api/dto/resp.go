package dto

import (
	"encoding/json"
	"time"
)

type TokenResponse struct {
	Token     string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time    `json:"expires_at" example:"2025-07-17T21:20:48Z"`
	User      UserResponse `json:"user"`
}

type RegisterResponse struct {
	TokenResponse
	Tenant TenantResponse `json:"tenant"`
}

type TenantResponse struct {
	ID   string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name string `json:"name" example:"Smile Dental"`
	Slug string `json:"slug" example:"smile-dental"`
}

type UserResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID  string    `json:"tenant_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string    `json:"email" example:"ana@smile.test"`
	Name      string    `json:"name" example:"Dr. Ana Lee"`
	Role      string    `json:"role" example:"ADMIN"`
	Active    bool      `json:"active" example:"true"`
	CreatedAt time.Time `json:"created_at" example:"2025-07-17T21:20:48Z"`
}

type SubscriptionResponse struct {
	PlanType           string    `json:"plan_type" example:"FREE"`
	Status             string    `json:"status" example:"ACTIVE"`
	MaxPatients        int       `json:"max_patients" example:"50"`
	MaxUsers           int       `json:"max_users" example:"2"`
	AIQueriesLimit     int       `json:"ai_queries_limit" example:"50"`
	AIQueriesUsed      int       `json:"ai_queries_used" example:"12"`
	CurrentPeriodStart time.Time `json:"current_period_start" example:"2025-07-01T00:00:00Z"`
	CurrentPeriodEnd   time.Time `json:"current_period_end" example:"2025-07-31T00:00:00Z"`
}

type PatientResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	FirstName   string    `json:"first_name" example:"Maria"`
	LastName    string    `json:"last_name" example:"Silva"`
	Email       string    `json:"email,omitempty" example:"maria@mail.test"`
	Phone       string    `json:"phone,omitempty" example:"+55 11 99999-0000"`
	DateOfBirth string    `json:"date_of_birth,omitempty" example:"1990-04-12"`
	CreatedAt   time.Time `json:"created_at" example:"2025-07-17T21:20:48Z"`
}

// APIKeyResponse never carries the key itself, only its display prefix.
type APIKeyResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Provider  string    `json:"provider" example:"openai"`
	Name      string    `json:"name" example:"Production key"`
	KeyPrefix string    `json:"key_prefix" example:"sk-l...6789"`
	CreatedBy string    `json:"created_by" example:"550e8400-e29b-41d4-a716-446655440000"`
	CreatedAt time.Time `json:"created_at" example:"2025-07-17T21:20:48Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2025-07-17T21:20:48Z"`
}

type AnalysisResponse struct {
	Result         string `json:"result" example:"Patient shows steady improvement..."`
	AIQueriesUsed  int    `json:"ai_queries_used" example:"13"`
	AIQueriesLimit int    `json:"ai_queries_limit" example:"50"`
}

// AuditLogResponse represents a single audit log entry in the response
type AuditLogResponse struct {
	ID        string          `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID  string          `json:"tenant_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID    string          `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Action    string          `json:"action" example:"LOGIN_SUCCEEDED"`
	Resource  string          `json:"resource" example:"session"`
	IPAddress string          `json:"ip_address,omitempty" example:"192.168.1.1"`
	UserAgent string          `json:"user_agent,omitempty" example:"Mozilla/5.0"`
	Metadata  json.RawMessage `json:"metadata,omitempty" swaggertype:"string" example:"{\"provider\":\"openai\"}"`
	Timestamp time.Time       `json:"timestamp" example:"2025-07-17T21:20:48Z"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Archive scheduled"`
}
