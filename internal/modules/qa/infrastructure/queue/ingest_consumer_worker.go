package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"DataLink/internal/modules/qa/domain/knowledge"
	"DataLink/internal/modules/qa/domain/repository"
	"DataLink/internal/modules/qa/infrastructure/mq"
	"DataLink/internal/modules/qa/infrastructure/pipeline"
	"DataLink/pkg/zlog"

	"go.uber.org/zap"
)

// 摄取事件类型
const (
	EventTypeDocument       = "document"        // 摄取一篇外部文档
	EventTypeNarrateDataset = "narrate_dataset" // 把数据集口述化后整体摄取
)

// IngestEventPayload Kafka 消息体。dedup_key 由发布方生成，消费侧按它幂等。
type IngestEventPayload struct {
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	Content   string `json:"content,omitempty"`
	DedupKey  string `json:"dedup_key"`
}

// IngestConsumerWorker 消费摄取事件并驱动 IngestPipeline。
// 失败的消息不提交位点，依赖 broker 重投 + dedup_key 幂等去重。
type IngestConsumerWorker struct {
	consumer  mq.Consumer
	eventRepo repository.IngestEventRepository
	dataset   repository.DatasetRepository
	pipeline  *pipeline.IngestPipeline
}

func NewIngestConsumerWorker(
	consumer mq.Consumer,
	eventRepo repository.IngestEventRepository,
	dataset repository.DatasetRepository,
	p *pipeline.IngestPipeline,
) *IngestConsumerWorker {
	return &IngestConsumerWorker{
		consumer:  consumer,
		eventRepo: eventRepo,
		dataset:   dataset,
		pipeline:  p,
	}
}

func (w *IngestConsumerWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	if w.eventRepo == nil {
		return errors.New("event repo is nil")
	}
	if w.pipeline == nil {
		return errors.New("pipeline is nil")
	}
	return w.consumer.Run(ctx, w)
}

func (w *IngestConsumerWorker) Close() error {
	if w == nil || w.consumer == nil {
		return nil
	}
	return w.consumer.Close()
}

func (w *IngestConsumerWorker) Handle(ctx context.Context, msg mq.Message) error {
	var payload IngestEventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		// 坏消息直接丢弃，重投也修不好
		zlog.Warn("qa ingest consumer invalid payload", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}
	payload.Source = strings.TrimSpace(payload.Source)
	payload.DedupKey = strings.TrimSpace(payload.DedupKey)
	if payload.Source == "" || payload.DedupKey == "" {
		zlog.Warn("qa ingest consumer missing source/dedup_key", zap.String("topic", msg.Topic))
		return nil
	}

	inserted, err := w.eventRepo.InsertIfAbsent(ctx, &knowledge.IngestEvent{
		Source:      payload.Source,
		PayloadJson: string(msg.Value),
		DedupKey:    payload.DedupKey,
		Status:      knowledge.EventStatusPending,
	})
	if err != nil {
		zlog.Warn("qa ingest consumer record event failed", zap.String("dedup_key", payload.DedupKey), zap.Error(err))
		return err
	}
	if !inserted {
		// 重复投递，之前已处理或正在处理
		return nil
	}

	if procErr := w.processEvent(ctx, &payload); procErr != nil {
		_ = w.eventRepo.UpdateStatus(ctx, payload.DedupKey, knowledge.EventStatusFailed)
		zlog.Warn("qa ingest consumer event failed",
			zap.String("event_type", payload.EventType),
			zap.String("source", payload.Source),
			zap.String("dedup_key", payload.DedupKey),
			zap.Error(procErr),
		)
		return nil
	}

	if err := w.eventRepo.UpdateStatus(ctx, payload.DedupKey, knowledge.EventStatusDone); err != nil {
		zlog.Warn("qa ingest consumer mark done failed", zap.String("dedup_key", payload.DedupKey), zap.Error(err))
		return err
	}
	return nil
}

func (w *IngestConsumerWorker) processEvent(ctx context.Context, payload *IngestEventPayload) error {
	switch strings.TrimSpace(payload.EventType) {
	case EventTypeDocument, "":
		content := strings.TrimSpace(payload.Content)
		if content == "" {
			return errors.New("empty document content")
		}
		_, err := w.pipeline.Ingest(ctx, &pipeline.IngestRequest{
			Source:    payload.Source,
			Documents: []string{content},
		})
		return err

	case EventTypeNarrateDataset:
		if w.dataset == nil {
			return errors.New("dataset repository is nil")
		}
		passengers, err := w.dataset.ListPassengers(ctx, 0)
		if err != nil {
			return err
		}
		if len(passengers) == 0 {
			return errors.New("dataset is empty")
		}
		docs := make([]string, 0, len(passengers))
		for _, p := range passengers {
			docs = append(docs, p.Narrate())
		}
		_, err = w.pipeline.Ingest(ctx, &pipeline.IngestRequest{
			Source:    payload.Source,
			Documents: docs,
		})
		return err

	default:
		return errors.New("unknown event_type")
	}
}
