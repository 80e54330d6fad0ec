package config

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
)

// systemIndexSegment names the index for audit entries recorded before a
// tenant existed.
const systemIndexSegment = "system"

type OpenSearchConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	IndexPrefix string
	SkipVerify  bool
}

func DefaultOpenSearchConfig() *OpenSearchConfig {
	return &OpenSearchConfig{
		Host:        getEnvWithDefault("OPENSEARCH_HOST", "localhost"),
		Port:        getEnvWithDefault("OPENSEARCH_PORT", "9200"),
		Username:    getEnvWithDefault("OPENSEARCH_USERNAME", ""),
		Password:    getEnvWithDefault("OPENSEARCH_PASSWORD", ""),
		IndexPrefix: getEnvWithDefault("OPENSEARCH_INDEX_PREFIX", "clinic_audit"),
		SkipVerify:  getEnvBoolWithDefault("OPENSEARCH_INSECURE_SKIP_VERIFY", true),
	}
}

func (c *OpenSearchConfig) GetClient() (*opensearch.Client, error) {
	config := opensearch.Config{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: c.SkipVerify,
			},
		},
		Addresses: []string{
			fmt.Sprintf("http://%s:%s", c.Host, c.Port),
		},
	}

	if c.Username != "" && c.Password != "" {
		config.Username = c.Username
		config.Password = c.Password
	}

	return opensearch.NewClient(config)
}

// GetIndexName returns the monthly index for a tenant.
// Format: <prefix>_<tenant_id|system>_YYYY_MM
func (c *OpenSearchConfig) GetIndexName(tenantID string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s", c.IndexPrefix, indexSegment(tenantID), t.UTC().Format("2006_01"))
}

// GetIndexPattern returns a pattern matching all indices for a tenant
func (c *OpenSearchConfig) GetIndexPattern(tenantID string) string {
	return fmt.Sprintf("%s_%s_*", c.IndexPrefix, indexSegment(tenantID))
}

func indexSegment(tenantID string) string {
	if tenantID == "" {
		return systemIndexSegment
	}
	return tenantID
}
