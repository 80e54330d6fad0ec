package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingrain94/clinic-access-core/internal/mocks"
	"github.com/kingrain94/clinic-access-core/internal/repository/postgres"
	"github.com/kingrain94/clinic-access-core/internal/testutil"
)

func TestNew(t *testing.T) {
	pg := postgres.NewPostgresRepository(testutil.NewTestConnections(t))

	withSearch := New(pg, new(mocks.OpenSearchRepository))
	assert.NotNil(t, withSearch.OpenSearch())
	assert.NotNil(t, withSearch.AuditLog())

	withoutSearch := New(pg, nil)
	assert.Nil(t, withoutSearch.OpenSearch())
	assert.NotNil(t, withoutSearch.Patient())
}
