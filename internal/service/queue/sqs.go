package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

type MessageType string

const (
	MessageTypeIndex     MessageType = "INDEX"
	MessageTypeBulkIndex MessageType = "BULK_INDEX"
	MessageTypeArchive   MessageType = "ARCHIVE"
)

type Message struct {
	Type      MessageType       `json:"type"`
	TenantID  string            `json:"tenant_id"`
	Logs      []domain.AuditLog `json:"logs,omitempty"`
	Timestamp time.Time         `json:"timestamp"`

	// Archive window and requester
	StartTime   time.Time `json:"start_time,omitempty"`
	EndTime     time.Time `json:"end_time,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
}

type ReceivedMessage struct {
	Message       Message
	ReceiptHandle *string
}

// Client is the subset of the SQS API used here.
type Client interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSService struct {
	client          Client
	indexQueueURL   string
	archiveQueueURL string
	now             func() time.Time
}

func NewSQSService(client Client, config *config.SQSConfig) *SQSService {
	return &SQSService{
		client:          client,
		indexQueueURL:   config.IndexQueueURL,
		archiveQueueURL: config.ArchiveQueueURL,
		now:             time.Now,
	}
}

func (s *SQSService) IndexQueueURL() string {
	return s.indexQueueURL
}

func (s *SQSService) ArchiveQueueURL() string {
	return s.archiveQueueURL
}

func (s *SQSService) SendIndexMessage(ctx context.Context, log *domain.AuditLog) error {
	msg := Message{
		Type:      MessageTypeIndex,
		TenantID:  log.TenantID,
		Logs:      []domain.AuditLog{*log},
		Timestamp: log.Timestamp,
	}

	return s.sendMessage(ctx, msg, s.indexQueueURL)
}

func (s *SQSService) SendBulkIndexMessage(ctx context.Context, logs []domain.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}

	msg := Message{
		Type:      MessageTypeBulkIndex,
		TenantID:  logs[0].TenantID,
		Logs:      logs,
		Timestamp: logs[0].Timestamp,
	}

	return s.sendMessage(ctx, msg, s.indexQueueURL)
}

// SendArchiveMessage asks the archive worker to export tenantID's entries
// recorded in [start, end] to object storage.
func (s *SQSService) SendArchiveMessage(ctx context.Context, tenantID, requestedBy string, start, end time.Time) error {
	msg := Message{
		Type:        MessageTypeArchive,
		TenantID:    tenantID,
		StartTime:   start,
		EndTime:     end,
		RequestedBy: requestedBy,
		Timestamp:   s.now().UTC(),
	}

	return s.sendMessage(ctx, msg, s.archiveQueueURL)
}

func (s *SQSService) sendMessage(ctx context.Context, msg Message, queueURL string) error {
	msgBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		MessageBody: aws.String(string(msgBody)),
		QueueUrl:    aws.String(queueURL),
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// ReceiveMessages long-polls queueURL. Bodies that do not decode are
// skipped and left for the queue's redrive policy.
func (s *SQSService) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitTimeSeconds,
	}

	output, err := s.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]ReceivedMessage, 0, len(output.Messages))
	for _, msg := range output.Messages {
		if msg.Body == nil {
			continue
		}
		var message Message
		if err := json.Unmarshal([]byte(*msg.Body), &message); err != nil {
			continue
		}
		messages = append(messages, ReceivedMessage{
			Message:       message,
			ReceiptHandle: msg.ReceiptHandle,
		})
	}

	return messages, nil
}

func (s *SQSService) DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: receiptHandle,
	}

	if _, err := s.client.DeleteMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}
