package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

type PatientServiceTestSuite struct {
	suite.Suite
	f       *fixture
	ctx     context.Context
	service *PatientService
	clinicA *RegisterResult
	clinicB *RegisterResult
}

func (s *PatientServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
	s.service = NewPatientService(s.f.repo, s.f.tracker)
	s.clinicA = s.f.register(s.T(), "Clinic A", "a@clinic.test")
	s.clinicB = s.f.register(s.T(), "Clinic B", "b@clinic.test")
}

func TestPatientService(t *testing.T) {
	suite.Run(t, new(PatientServiceTestSuite))
}

func (s *PatientServiceTestSuite) TestCreate_StampsCallerTenant() {
	patient, err := s.service.Create(s.ctx, s.clinicA.Claims, dto.CreatePatientRequest{
		FirstName: "Maria", LastName: "Silva", DateOfBirth: "1990-04-12",
	})

	s.Require().NoError(err)
	s.Equal(s.clinicA.Tenant.ID, patient.TenantID)
	s.Require().NotNil(patient.DateOfBirth)
	s.Equal("1990-04-12", patient.DateOfBirth.Format("2006-01-02"))
}

func (s *PatientServiceTestSuite) TestCreate_InvalidDate() {
	_, err := s.service.Create(s.ctx, s.clinicA.Claims, dto.CreatePatientRequest{
		FirstName: "Maria", LastName: "Silva", DateOfBirth: "12/04/1990",
	})

	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *PatientServiceTestSuite) TestCreate_PatientQuota() {
	req := dto.CreatePatientRequest{FirstName: "P", LastName: "One"}
	for i := 0; i < 2; i++ {
		_, err := s.service.Create(s.ctx, s.clinicA.Claims, req)
		s.Require().NoError(err)
	}

	_, err := s.service.Create(s.ctx, s.clinicA.Claims, req)
	s.ErrorIs(err, apperror.ErrQuotaExceeded)

	_, err = s.service.Create(s.ctx, s.clinicB.Claims, req)
	s.NoError(err, "another clinic's usage does not count")
}

func (s *PatientServiceTestSuite) TestCreate_NoActiveSubscription() {
	s.Require().NoError(s.f.db.Model(&domain.Subscription{}).
		Where("tenant_id = ?", s.clinicA.Tenant.ID).
		Update("status", domain.SubscriptionCanceled).Error)

	_, err := s.service.Create(s.ctx, s.clinicA.Claims, dto.CreatePatientRequest{FirstName: "P", LastName: "One"})

	s.ErrorIs(err, apperror.ErrNoActiveSubscription)
}

func (s *PatientServiceTestSuite) TestOtherClinicCannotReadOrDelete() {
	patient, err := s.service.Create(s.ctx, s.clinicA.Claims, dto.CreatePatientRequest{FirstName: "Maria", LastName: "Silva"})
	s.Require().NoError(err)

	_, err = s.service.Get(s.ctx, s.clinicB.Claims, patient.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
	s.ErrorIs(s.service.Delete(s.ctx, s.clinicB.Claims, patient.ID), apperror.ErrNotFound)

	listB, err := s.service.List(s.ctx, s.clinicB.Claims, 1, 10)
	s.NoError(err)
	s.Empty(listB)

	found, err := s.service.Get(s.ctx, s.clinicA.Claims, patient.ID)
	s.NoError(err)
	s.Equal(patient.ID, found.ID)
	s.NoError(s.service.Delete(s.ctx, s.clinicA.Claims, patient.ID))
}

func (s *PatientServiceTestSuite) TestList_Paginates() {
	for _, name := range []string{"One", "Two"} {
		_, err := s.service.Create(s.ctx, s.clinicA.Claims, dto.CreatePatientRequest{FirstName: "P", LastName: name})
		s.Require().NoError(err)
	}

	page1, err := s.service.List(s.ctx, s.clinicA.Claims, 1, 1)
	s.Require().NoError(err)
	page2, err := s.service.List(s.ctx, s.clinicA.Claims, 2, 1)
	s.Require().NoError(err)

	s.Len(page1, 1)
	s.Len(page2, 1)
	s.NotEqual(page1[0].ID, page2[0].ID)
}
