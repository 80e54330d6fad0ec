package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

const defaultSearchSize = 50

type repositoryImpl struct {
	client *opensearch.Client
	config *config.OpenSearchConfig
}

func NewRepository(client *opensearch.Client, config *config.OpenSearchConfig) repository.OpenSearchRepository {
	return &repositoryImpl{
		client: client,
		config: config,
	}
}

func indexTime(log *domain.AuditLog) time.Time {
	if log.Timestamp.IsZero() {
		return time.Now().UTC()
	}
	return log.Timestamp
}

func (r *repositoryImpl) Index(ctx context.Context, log *domain.AuditLog) error {
	at := indexTime(log)
	if err := r.CreateIndex(ctx, log.TenantID, at); err != nil {
		return fmt.Errorf("failed to ensure index exists: %w", err)
	}

	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      r.config.GetIndexName(log.TenantID, at),
		DocumentID: log.ID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}

// BulkIndex groups logs by target index and sends one bulk request per index.
func (r *repositoryImpl) BulkIndex(ctx context.Context, logs []domain.AuditLog) error {
	groups := make(map[string][]domain.AuditLog)
	for _, log := range logs {
		name := r.config.GetIndexName(log.TenantID, indexTime(&log))
		groups[name] = append(groups[name], log)
	}

	for name, group := range groups {
		if err := r.bulkIndexGroup(ctx, name, group); err != nil {
			return fmt.Errorf("failed to bulk index group for index %s: %w", name, err)
		}
	}

	return nil
}

func (r *repositoryImpl) bulkIndexGroup(ctx context.Context, indexName string, logs []domain.AuditLog) error {
	if err := r.CreateIndex(ctx, logs[0].TenantID, indexTime(&logs[0])); err != nil {
		return fmt.Errorf("failed to ensure index exists: %w", err)
	}

	var body bytes.Buffer
	encoder := json.NewEncoder(&body)
	for _, log := range logs {
		action := map[string]any{
			"index": map[string]any{"_index": indexName, "_id": log.ID},
		}
		if err := encoder.Encode(action); err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}
		if err := encoder.Encode(log); err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
	}

	req := opensearchapi.BulkRequest{Body: &body}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request failed: %s", res.String())
	}

	return nil
}

// Search queries only the indices of the scoped tenant.
func (r *repositoryImpl) Search(ctx context.Context, scope tenancy.Scope, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	if scope.IsZero() {
		return nil, tenancy.ErrUnscoped
	}

	queryJSON, err := json.Marshal(buildSearchQuery(scope.TenantID(), filter))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.config.GetIndexPattern(scope.TenantID())},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return []domain.AuditLog{}, nil
		}
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source domain.AuditLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	logs := make([]domain.AuditLog, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		logs = append(logs, hit.Source)
	}

	return logs, nil
}

// buildSearchQuery always filters on tenant_id in addition to the index
// pattern, so a mis-routed document cannot leak across tenants.
func buildSearchQuery(tenantID string, filter domain.AuditLogFilter) map[string]any {
	must := []map[string]any{termQuery("tenant_id", tenantID)}

	if filter.UserID != "" {
		must = append(must, termQuery("user_id", filter.UserID))
	}
	if filter.Action != "" {
		must = append(must, termQuery("action", string(filter.Action)))
	}
	if filter.Resource != "" {
		must = append(must, map[string]any{"match": map[string]any{"resource": filter.Resource}})
	}
	if !filter.StartTime.IsZero() || !filter.EndTime.IsZero() {
		timeRange := make(map[string]any)
		if !filter.StartTime.IsZero() {
			timeRange["gte"] = filter.StartTime
		}
		if !filter.EndTime.IsZero() {
			timeRange["lte"] = filter.EndTime
		}
		must = append(must, map[string]any{"range": map[string]any{"timestamp": timeRange}})
	}

	size := filter.Limit
	if size <= 0 {
		size = defaultSearchSize
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"filter": must},
		},
		"size": size,
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
		},
	}
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"term": map[string]any{field: value},
	}
}

const indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"tenant_id": { "type": "keyword" },
			"user_id": { "type": "keyword" },
			"action": { "type": "keyword" },
			"resource": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"metadata": { "type": "object", "dynamic": true },
			"timestamp": { "type": "date" },
			"ip_address": { "type": "keyword" },
			"user_agent": { "type": "text" }
		}
	},
	"settings": {
		"index": {
			"number_of_shards": 1,
			"number_of_replicas": 1,
			"refresh_interval": "1s"
		}
	}
}`

func (r *repositoryImpl) CreateIndex(ctx context.Context, tenantID string, t time.Time) error {
	indexName := r.config.GetIndexName(tenantID, t)

	exists := opensearchapi.IndicesExistsRequest{Index: []string{indexName}}
	res, err := exists.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	create := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(indexMapping),
	}

	res, err = create.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	// Another worker may have created it between the two calls.
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}
