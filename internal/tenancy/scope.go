// Package tenancy confines data access to the tenant named in a verified
// credential.
package tenancy

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

// ErrUnscoped is returned when a zero Scope is used.
var ErrUnscoped = errors.New("tenancy: query attempted without a tenant scope")

// Scope names the tenant a request may touch. The tenant id is unexported
// and only FromClaims sets it, so it always comes from a verified credential.
// The zero value refuses to build queries.
type Scope struct {
	tenantID string
}

// FromClaims derives a Scope from verified claims. Identities without a
// tenant (bootstrap) get Forbidden.
func FromClaims(claims *auth.Claims) (Scope, error) {
	if claims == nil || claims.TenantID == "" {
		return Scope{}, apperror.New(apperror.KindForbidden, "identity is not attached to a tenant")
	}
	return Scope{tenantID: claims.TenantID}, nil
}

// ForTenant builds a Scope for internal callers that act on behalf of a
// tenant they created or loaded themselves (registration, workers). Request
// handlers must use FromClaims.
func ForTenant(tenantID string) (Scope, error) {
	if tenantID == "" {
		return Scope{}, ErrUnscoped
	}
	return Scope{tenantID: tenantID}, nil
}

// TenantID returns the scoped tenant id.
func (s Scope) TenantID() string {
	return s.tenantID
}

// IsZero reports whether s is the unusable zero value.
func (s Scope) IsZero() bool {
	return s.tenantID == ""
}

// Apply adds the tenant equality filter to db.
func (s Scope) Apply(db *gorm.DB) (*gorm.DB, error) {
	if s.IsZero() {
		return nil, ErrUnscoped
	}
	return db.Where("tenant_id = ?", s.tenantID), nil
}

// Stamp sets the tenant id on a row before it is inserted, overwriting
// whatever the caller supplied.
func (s Scope) Stamp(row domain.TenantOwned) error {
	if s.IsZero() {
		return ErrUnscoped
	}
	row.SetTenantID(s.tenantID)
	return nil
}
