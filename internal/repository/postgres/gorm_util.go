package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

// scoped returns db filtered to the scope's tenant. A zero scope is refused
// before any SQL is built.
func scoped(ctx context.Context, db *gorm.DB, scope tenancy.Scope) (*gorm.DB, error) {
	return scope.Apply(db.WithContext(ctx))
}

// translateError maps gorm errors onto the repository sentinels. Anything
// unrecognised means the store misbehaved and is reported as unavailable.
func translateError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return repository.ErrDuplicate
	case errors.Is(err, tenancy.ErrUnscoped):
		return err
	default:
		return apperror.Wrap(apperror.KindPersistenceUnavailable, op, err)
	}
}

// isUniqueViolation catches drivers that do not translate constraint errors.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
