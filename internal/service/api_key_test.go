package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

type APIKeyServiceTestSuite struct {
	suite.Suite
	f       *fixture
	ctx     context.Context
	service *APIKeyService
	clinicA *RegisterResult
	clinicB *RegisterResult
}

func (s *APIKeyServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()

	sealer, err := auth.NewSealer("sealing-secret")
	s.Require().NoError(err)
	s.service = NewAPIKeyService(s.f.repo, sealer, s.f.audit)

	s.clinicA = s.f.register(s.T(), "Clinic A", "a@clinic.test")
	s.clinicB = s.f.register(s.T(), "Clinic B", "b@clinic.test")
}

func TestAPIKeyService(t *testing.T) {
	suite.Run(t, new(APIKeyServiceTestSuite))
}

func (s *APIKeyServiceTestSuite) create() *domain.APIKey {
	key, err := s.service.Create(s.ctx, s.clinicA.Claims, dto.CreateAPIKeyRequest{
		Provider: "OpenAI",
		Name:     "Production key",
		Key:      "sk-live-0123456789",
	})
	s.Require().NoError(err)
	return key
}

func (s *APIKeyServiceTestSuite) TestCreate_StoresSealedKeyOnly() {
	key := s.create()

	s.Equal("openai", key.Provider)
	s.Equal("sk-l...6789", key.KeyPrefix)
	s.NotContains(key.KeySealed, "sk-live")
	s.Equal(s.clinicA.Claims.UserID, key.CreatedBy)
	s.Contains(s.f.auditActions(s.T(), s.clinicA.Tenant.ID), domain.ActionAPIKeyCreated)

	scope, err := tenancy.ForTenant(s.clinicA.Tenant.ID)
	s.Require().NoError(err)
	plaintext, err := s.service.Resolve(s.ctx, scope, "openai")
	s.Require().NoError(err)
	s.Equal("sk-live-0123456789", plaintext)
}

func (s *APIKeyServiceTestSuite) TestGet_IsAudited() {
	key := s.create()

	found, err := s.service.Get(s.ctx, s.clinicA.Claims, key.ID)

	s.Require().NoError(err)
	s.Equal(key.ID, found.ID)
	s.Contains(s.f.auditActions(s.T(), s.clinicA.Tenant.ID), domain.ActionAPIKeyViewed)
}

func (s *APIKeyServiceTestSuite) TestUpdate_RotatesKey() {
	key := s.create()

	updated, err := s.service.Update(s.ctx, s.clinicA.Claims, key.ID, dto.UpdateAPIKeyRequest{Key: "sk-live-9876543210"})

	s.Require().NoError(err)
	s.Equal("sk-l...3210", updated.KeyPrefix)
	s.Equal("Production key", updated.Name)
	s.Contains(s.f.auditActions(s.T(), s.clinicA.Tenant.ID), domain.ActionAPIKeyUpdated)

	_, err = s.service.Update(s.ctx, s.clinicA.Claims, key.ID, dto.UpdateAPIKeyRequest{})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *APIKeyServiceTestSuite) TestOtherClinicCannotTouchKey() {
	key := s.create()

	_, err := s.service.Get(s.ctx, s.clinicB.Claims, key.ID)
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = s.service.Update(s.ctx, s.clinicB.Claims, key.ID, dto.UpdateAPIKeyRequest{Name: "mine now"})
	s.ErrorIs(err, apperror.ErrNotFound)

	s.ErrorIs(s.service.Delete(s.ctx, s.clinicB.Claims, key.ID), apperror.ErrNotFound)

	keysB, err := s.service.List(s.ctx, s.clinicB.Claims)
	s.NoError(err)
	s.Empty(keysB)

	s.NotContains(s.f.auditActions(s.T(), s.clinicB.Tenant.ID), domain.ActionAPIKeyDeleted)
}

func (s *APIKeyServiceTestSuite) TestDelete() {
	key := s.create()

	s.Require().NoError(s.service.Delete(s.ctx, s.clinicA.Claims, key.ID))

	keys, err := s.service.List(s.ctx, s.clinicA.Claims)
	s.NoError(err)
	s.Empty(keys)
	s.Contains(s.f.auditActions(s.T(), s.clinicA.Tenant.ID), domain.ActionAPIKeyDeleted)
}

func (s *APIKeyServiceTestSuite) TestResolve_NoKey() {
	scope, err := tenancy.ForTenant(s.clinicB.Tenant.ID)
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.ctx, scope, "openai")

	s.ErrorIs(err, apperror.ErrNotFound)
}
