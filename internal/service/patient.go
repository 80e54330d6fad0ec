package service

import (
	"context"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type PatientService struct {
	repo  repository.PostgresRepository
	quota QuotaTracker
}

func NewPatientService(repo repository.PostgresRepository, quota QuotaTracker) *PatientService {
	return &PatientService{
		repo:  repo,
		quota: quota,
	}
}

// Create adds a patient to the caller's clinic within the plan's patient limit.
func (s *PatientService) Create(ctx context.Context, claims *auth.Claims, req dto.CreatePatientRequest) (*domain.Patient, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}

	patient := &domain.Patient{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.DateOfBirth != "" {
		dob, err := utils.ParseDate(req.DateOfBirth)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid date_of_birth", err)
		}
		patient.DateOfBirth = &dob
	}

	err = s.repo.Transaction(ctx, func(tx repository.PostgresRepository) error {
		outcome, err := s.quota.Reserve(ctx, tx, scope, quota.ResourcePatient, 1)
		if err != nil {
			return err
		}
		if outcome != quota.Consumed {
			return outcome.Err(quota.ResourcePatient)
		}
		return tx.Patient().Create(ctx, scope, patient)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) Get(ctx context.Context, claims *auth.Claims, id string) (*domain.Patient, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}
	return s.repo.Patient().GetByID(ctx, scope, id)
}

func (s *PatientService) List(ctx context.Context, claims *auth.Claims, page, pageSize int) ([]domain.Patient, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	return s.repo.Patient().List(ctx, scope, pageSize, (page-1)*pageSize)
}

func (s *PatientService) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return err
	}
	return s.repo.Patient().Delete(ctx, scope, id)
}
