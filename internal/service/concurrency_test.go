package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

const racers = 50

func TestPatientCreate_ConcurrentRequestsStayWithinPlan(t *testing.T) {
	f := newPooledFixture(t)
	reg := f.register(t, "Busy Clinic", "owner@busy.test")
	svc := NewPatientService(f.repo, f.tracker)

	var created, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), reg.Claims, dto.CreatePatientRequest{
				FirstName: "Patient", LastName: fmt.Sprint(i),
			})
			switch {
			case err == nil:
				created.Add(1)
			case assert.ErrorIs(t, err, apperror.ErrQuotaExceeded):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	var rows int64
	require.NoError(t, f.db.Model(&domain.Patient{}).Where("tenant_id = ?", reg.Tenant.ID).Count(&rows).Error)

	assert.Equal(t, int64(2), created.Load(), "free plan allows two patients")
	assert.Equal(t, int64(racers-2), rejected.Load())
	assert.Equal(t, int64(2), rows)
}

func TestCreateStaff_ConcurrentRequestsStayWithinPlan(t *testing.T) {
	f := newPooledFixture(t)
	reg := f.register(t, "Busy Clinic", "owner@busy.test")
	svc := f.accounts(t)

	var created, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateStaff(context.Background(), reg.Claims, dto.CreateUserRequest{
				Name:     "Staff",
				Email:    fmt.Sprintf("staff-%d@busy.test", i),
				Password: "front-desk-pass",
				Role:     string(domain.RoleDentist),
			})
			switch {
			case err == nil:
				created.Add(1)
			case assert.ErrorIs(t, err, apperror.ErrQuotaExceeded):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	var rows int64
	require.NoError(t, f.db.Model(&domain.User{}).Where("tenant_id = ?", reg.Tenant.ID).Count(&rows).Error)

	// The clinic admin already holds one of the two seats.
	assert.Equal(t, int64(1), created.Load())
	assert.Equal(t, int64(racers-1), rejected.Load())
	assert.Equal(t, int64(2), rows)
}
