package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"DataLink/internal/modules/qa/application/dto/request"
	"DataLink/internal/modules/qa/application/dto/respond"
	"DataLink/internal/modules/qa/infrastructure/mq"
	"DataLink/internal/modules/qa/infrastructure/queue"
)

// AsyncIngestService 异步摄取服务接口。
// 只负责把事件投递到 Kafka，真正的切片/向量化由消费侧 worker 完成。
type AsyncIngestService interface {
	PublishDocument(ctx context.Context, req request.IngestDocumentRequest) (*respond.AsyncIngestRespond, error)
	PublishNarrateDataset(ctx context.Context, req request.NarrateDatasetRequest) (*respond.AsyncIngestRespond, error)
}

type asyncIngestServiceImpl struct {
	publisher mq.Publisher
	topic     string
}

// NewAsyncIngestService 创建异步摄取服务
func NewAsyncIngestService(publisher mq.Publisher, topic string) AsyncIngestService {
	return &asyncIngestServiceImpl{publisher: publisher, topic: strings.TrimSpace(topic)}
}

func (s *asyncIngestServiceImpl) PublishDocument(ctx context.Context, req request.IngestDocumentRequest) (*respond.AsyncIngestRespond, error) {
	source := strings.TrimSpace(req.Source)
	content := strings.TrimSpace(req.Content)
	if source == "" || content == "" {
		return nil, fmt.Errorf("source and content are required")
	}

	payload := queue.IngestEventPayload{
		EventType: queue.EventTypeDocument,
		Source:    source,
		Content:   content,
		DedupKey:  buildDedupKey(queue.EventTypeDocument, source, content),
	}
	return s.publish(ctx, payload)
}

func (s *asyncIngestServiceImpl) PublishNarrateDataset(ctx context.Context, req request.NarrateDatasetRequest) (*respond.AsyncIngestRespond, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "titanic"
	}

	payload := queue.IngestEventPayload{
		EventType: queue.EventTypeNarrateDataset,
		Source:    source,
		DedupKey:  buildDedupKey(queue.EventTypeNarrateDataset, source, ""),
	}
	return s.publish(ctx, payload)
}

func (s *asyncIngestServiceImpl) publish(ctx context.Context, payload queue.IngestEventPayload) (*respond.AsyncIngestRespond, error) {
	if s.publisher == nil {
		return nil, fmt.Errorf("publisher is nil")
	}
	if s.topic == "" {
		return nil, fmt.Errorf("ingest topic is empty")
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	// 以 source 为 key，同一来源的事件保序
	result, err := s.publisher.Publish(ctx, mq.Message{
		Topic: s.topic,
		Key:   []byte(payload.Source),
		Value: value,
		Headers: map[string]string{
			"event_type": payload.EventType,
		},
	})
	if err != nil {
		return nil, err
	}
	return &respond.AsyncIngestRespond{
		Source:    payload.Source,
		DedupKey:  payload.DedupKey,
		Partition: result.Partition,
		Offset:    result.Offset,
	}, nil
}

// buildDedupKey 事件去重键：同一来源的同一份内容只会被处理一次
func buildDedupKey(eventType, source, content string) string {
	sum := sha256.Sum256([]byte(eventType + "\x00" + source + "\x00" + content))
	return eventType + "_" + hex.EncodeToString(sum[:16])
}
