package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

type PatientRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewPatientRepository(writerDB, readerDB *gorm.DB) *PatientRepository {
	return &PatientRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *PatientRepository) Create(ctx context.Context, scope tenancy.Scope, patient *domain.Patient) error {
	if err := scope.Stamp(patient); err != nil {
		return err
	}
	return translateError(r.writerDB.WithContext(ctx).Create(patient).Error, "failed to create patient")
}

func (r *PatientRepository) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*domain.Patient, error) {
	db, err := scoped(ctx, r.readerDB, scope)
	if err != nil {
		return nil, err
	}

	var patient domain.Patient
	if err := db.First(&patient, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get patient")
	}
	return &patient, nil
}

func (r *PatientRepository) List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]domain.Patient, error) {
	db, err := scoped(ctx, r.readerDB, scope)
	if err != nil {
		return nil, err
	}

	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	patients := []domain.Patient{}
	if err := db.Order("last_name ASC, first_name ASC").Find(&patients).Error; err != nil {
		return nil, translateError(err, "failed to list patients")
	}
	return patients, nil
}

func (r *PatientRepository) Count(ctx context.Context, scope tenancy.Scope) (int64, error) {
	db, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&domain.Patient{}).Count(&count).Error; err != nil {
		return 0, translateError(err, "failed to count patients")
	}
	return count, nil
}

func (r *PatientRepository) Delete(ctx context.Context, scope tenancy.Scope, id string) error {
	db, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&domain.Patient{})
	if result.Error != nil {
		return translateError(result.Error, "failed to delete patient")
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
