package dto

import (
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

const dateLayout = "2006-01-02"

func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		TenantID:  user.TenantIDValue(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

func FromUsers(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = FromUser(&users[i])
	}
	return responses
}

func FromTenant(tenant *domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:   tenant.ID,
		Name: tenant.Name,
		Slug: tenant.Slug,
	}
}

func FromSubscription(sub *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		PlanType:           string(sub.PlanType),
		Status:             string(sub.Status),
		MaxPatients:        sub.MaxPatients,
		MaxUsers:           sub.MaxUsers,
		AIQueriesLimit:     sub.AIQueriesLimit,
		AIQueriesUsed:      sub.AIQueriesUsed,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
	}
}

func FromPatient(patient *domain.Patient) PatientResponse {
	resp := PatientResponse{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Email:     patient.Email,
		Phone:     patient.Phone,
		CreatedAt: patient.CreatedAt,
	}
	if patient.DateOfBirth != nil {
		resp.DateOfBirth = patient.DateOfBirth.Format(dateLayout)
	}
	return resp
}

func FromPatients(patients []domain.Patient) []PatientResponse {
	responses := make([]PatientResponse, len(patients))
	for i := range patients {
		responses[i] = FromPatient(&patients[i])
	}
	return responses
}

func FromAPIKey(key *domain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:        key.ID,
		Provider:  key.Provider,
		Name:      key.Name,
		KeyPrefix: key.KeyPrefix,
		CreatedBy: key.CreatedBy,
		CreatedAt: key.CreatedAt,
		UpdatedAt: key.UpdatedAt,
	}
}

func FromAPIKeys(keys []domain.APIKey) []APIKeyResponse {
	responses := make([]APIKeyResponse, len(keys))
	for i := range keys {
		responses[i] = FromAPIKey(&keys[i])
	}
	return responses
}

// FromAuditLog converts an AuditLog domain model to an AuditLogResponse DTO
func FromAuditLog(log *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:        log.ID,
		TenantID:  log.TenantID,
		UserID:    log.UserID,
		Action:    string(log.Action),
		Resource:  log.Resource,
		IPAddress: log.IPAddress,
		UserAgent: log.UserAgent,
		Metadata:  log.Metadata,
		Timestamp: log.Timestamp,
	}
}

func FromAuditLogs(logs []domain.AuditLog) []AuditLogResponse {
	responses := make([]AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *FromAuditLog(&logs[i])
	}
	return responses
}
