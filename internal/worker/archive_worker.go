package worker

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/service/queue"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

// ObjectStore is the part of the S3 API the archive worker writes with.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// archive is the exported document. Entries are copied, never removed.
type archive struct {
	TenantID    string            `json:"tenant_id"`
	RequestedBy string            `json:"requested_by,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	ArchivedAt  time.Time         `json:"archived_at"`
	LogCount    int               `json:"log_count"`
	Logs        []domain.AuditLog `json:"logs"`
}

// ArchiveWorker exports a tenant's audit entries for a time range to S3.
type ArchiveWorker struct {
	*poller
	repository repository.AuditLogRepository
	store      ObjectStore
	s3Config   *config.S3Config
	now        func() time.Time
}

func NewArchiveWorker(
	q Queue,
	queueURL string,
	repository repository.AuditLogRepository,
	store ObjectStore,
	s3Config *config.S3Config,
	logger *logger.Logger,
	workerCount int,
	pollInterval time.Duration,
) *ArchiveWorker {
	w := &ArchiveWorker{
		poller:     newPoller(q, queueURL, logger.Named("archive_worker"), workerCount, pollInterval),
		repository: repository,
		store:      store,
		s3Config:   s3Config,
		now:        time.Now,
	}
	w.handle = w.processMessage
	return w
}

func (w *ArchiveWorker) processMessage(ctx context.Context, msg queue.Message) error {
	if msg.Type != queue.MessageTypeArchive {
		return fmt.Errorf("unexpected message type on archive queue: %s", msg.Type)
	}

	scope, err := tenancy.ForTenant(msg.TenantID)
	if err != nil {
		return fmt.Errorf("archive message without tenant: %w", err)
	}

	logs, err := w.repository.ListForTenant(ctx, scope, domain.AuditLogFilter{
		StartTime: msg.StartTime,
		EndTime:   msg.EndTime,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch logs for archival for tenant %s: %w", msg.TenantID, err)
	}

	key, err := w.upload(ctx, archive{
		TenantID:    msg.TenantID,
		RequestedBy: msg.RequestedBy,
		StartTime:   msg.StartTime,
		EndTime:     msg.EndTime,
		ArchivedAt:  w.now().UTC(),
		LogCount:    len(logs),
		Logs:        logs,
	})
	if err != nil {
		return fmt.Errorf("failed to archive logs for tenant %s: %w", msg.TenantID, err)
	}

	w.logger.Info("Archived audit logs",
		zap.String("tenant_id", msg.TenantID),
		zap.Int("count", len(logs)),
		zap.String("key", key))
	return nil
}

func (w *ArchiveWorker) upload(ctx context.Context, doc archive) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress archive: %w", err)
	}

	key := w.s3Config.ArchiveKey(doc.TenantID, uuid.NewString(), doc.ArchivedAt)
	_, err := w.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(w.s3Config.BucketName),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
		Metadata: map[string]string{
			"tenant-id":  doc.TenantID,
			"log-count":  strconv.Itoa(doc.LogCount),
			"start-time": doc.StartTime.Format(time.RFC3339),
			"end-time":   doc.EndTime.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive to S3: %w", err)
	}

	return key, nil
}
