package dto

type RegisterRequest struct {
	ClinicName     string `json:"clinic_name" binding:"required,max=200" example:"Smile Dental"`
	Name           string `json:"name" binding:"required,max=200" example:"Dr. Ana Lee"`
	Email          string `json:"email" binding:"required,email" example:"ana@smile.test"`
	Password       string `json:"password" binding:"required,min=8,max=128" example:"correct-horse-battery"`
	RecoverySecret string `json:"recovery_secret" binding:"omitempty,min=8,max=128" example:"blue-river-42"`
	Plan           string `json:"plan" binding:"omitempty,oneof=FREE PRO ENTERPRISE" example:"FREE"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ana@smile.test"`
	Password string `json:"password" binding:"required" example:"correct-horse-battery"`
}

type RecoverRequest struct {
	Email          string `json:"email" binding:"required,email" example:"ana@smile.test"`
	RecoverySecret string `json:"recovery_secret" binding:"required" example:"blue-river-42"`
	NewPassword    string `json:"new_password" binding:"required,min=8,max=128" example:"new-horse-battery"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required" example:"correct-horse-battery"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128" example:"new-horse-battery"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=200" example:"Sam Reyes"`
	Email    string `json:"email" binding:"required,email" example:"sam@smile.test"`
	Password string `json:"password" binding:"required,min=8,max=128" example:"front-desk-pass"`
	Role     string `json:"role" binding:"required,oneof=ADMIN DENTIST RECEPTIONIST" example:"RECEPTIONIST"`
}

type CreatePatientRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100" example:"Maria"`
	LastName    string `json:"last_name" binding:"required,max=100" example:"Silva"`
	Email       string `json:"email" binding:"omitempty,email" example:"maria@mail.test"`
	Phone       string `json:"phone" binding:"max=40" example:"+55 11 99999-0000"`
	DateOfBirth string `json:"date_of_birth" example:"1990-04-12"`
}

type CreateAPIKeyRequest struct {
	Provider string `json:"provider" binding:"required,max=50" example:"openai"`
	Name     string `json:"name" binding:"required,max=100" example:"Production key"`
	Key      string `json:"key" binding:"required,min=8" example:"sk-live-0123456789"`
}

type UpdateAPIKeyRequest struct {
	Name string `json:"name" binding:"omitempty,max=100" example:"Rotated key"`
	Key  string `json:"key" binding:"omitempty,min=8" example:"sk-live-9876543210"`
}

type AnalysisRequest struct {
	PatientID string `json:"patient_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Prompt    string `json:"prompt" binding:"required,max=4000" example:"Summarize the last three visits"`
}

type ArchiveAuditLogsRequest struct {
	StartTime string `json:"start_time" binding:"required" example:"2025-01-01T00:00:00Z"`
	EndTime   string `json:"end_time" binding:"required" example:"2025-02-01T00:00:00Z"`
}
