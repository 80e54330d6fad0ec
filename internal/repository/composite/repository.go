// Package composite bundles the relational repositories with the optional
// audit search index.
package composite

import (
	"github.com/kingrain94/clinic-access-core/internal/repository"
)

type compositeRepository struct {
	repository.PostgresRepository
	osRepo repository.OpenSearchRepository
}

// New combines already-built repositories. osRepo may be nil when audit
// search is disabled; OpenSearch then returns nil.
func New(postgresRepo repository.PostgresRepository, osRepo repository.OpenSearchRepository) repository.Repository {
	return &compositeRepository{
		PostgresRepository: postgresRepo,
		osRepo:             osRepo,
	}
}

func (r *compositeRepository) OpenSearch() repository.OpenSearchRepository {
	return r.osRepo
}
