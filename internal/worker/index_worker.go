package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/service/queue"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

// IndexWorker copies stored audit entries into OpenSearch for search.
type IndexWorker struct {
	*poller
	osRepository repository.OpenSearchRepository
}

func NewIndexWorker(
	q Queue,
	queueURL string,
	osRepository repository.OpenSearchRepository,
	logger *logger.Logger,
	workerCount int,
	pollInterval time.Duration,
) *IndexWorker {
	w := &IndexWorker{
		poller:       newPoller(q, queueURL, logger.Named("index_worker"), workerCount, pollInterval),
		osRepository: osRepository,
	}
	w.handle = w.processMessage
	return w
}

func (w *IndexWorker) processMessage(ctx context.Context, msg queue.Message) error {
	switch msg.Type {
	case queue.MessageTypeIndex:
		if len(msg.Logs) != 1 {
			return fmt.Errorf("invalid number of logs for INDEX message: %d", len(msg.Logs))
		}
		return w.osRepository.Index(ctx, &msg.Logs[0])

	case queue.MessageTypeBulkIndex:
		if len(msg.Logs) == 0 {
			return fmt.Errorf("empty logs array for BULK_INDEX message")
		}
		return w.osRepository.BulkIndex(ctx, msg.Logs)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
