package service

import (
	"context"
	"fmt"
	"strings"

	"DataLink/internal/modules/qa/application/dto/request"
	"DataLink/internal/modules/qa/application/dto/respond"
	"DataLink/internal/modules/qa/domain/repository"
	"DataLink/internal/modules/qa/infrastructure/pipeline"
)

// IngestService 同步摄取服务接口（请求返回即代表已入库）
type IngestService interface {
	// IngestDocument 摄取一篇外部文档，同 source 整体替换
	IngestDocument(ctx context.Context, req request.IngestDocumentRequest) (*respond.IngestRespond, error)
	// NarrateDataset 把数据集逐行口述化后整体摄取
	NarrateDataset(ctx context.Context, req request.NarrateDatasetRequest) (*respond.IngestRespond, error)
}

type ingestServiceImpl struct {
	pipeline *pipeline.IngestPipeline
	dataset  repository.DatasetRepository
}

// NewIngestService 创建同步摄取服务
func NewIngestService(p *pipeline.IngestPipeline, dataset repository.DatasetRepository) IngestService {
	return &ingestServiceImpl{pipeline: p, dataset: dataset}
}

func (s *ingestServiceImpl) IngestDocument(ctx context.Context, req request.IngestDocumentRequest) (*respond.IngestRespond, error) {
	if s.pipeline == nil {
		return nil, fmt.Errorf("ingest pipeline is nil")
	}
	source := strings.TrimSpace(req.Source)
	content := strings.TrimSpace(req.Content)
	if source == "" || content == "" {
		return nil, fmt.Errorf("source and content are required")
	}

	result, err := s.pipeline.Ingest(ctx, &pipeline.IngestRequest{
		Source:    source,
		Documents: []string{content},
	})
	if err != nil {
		return nil, err
	}
	return toIngestRespond(result), nil
}

func (s *ingestServiceImpl) NarrateDataset(ctx context.Context, req request.NarrateDatasetRequest) (*respond.IngestRespond, error) {
	if s.pipeline == nil {
		return nil, fmt.Errorf("ingest pipeline is nil")
	}
	if s.dataset == nil {
		return nil, fmt.Errorf("dataset repository is nil")
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "titanic"
	}

	passengers, err := s.dataset.ListPassengers(ctx, 0)
	if err != nil {
		return nil, err
	}
	if len(passengers) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	docs := make([]string, 0, len(passengers))
	for _, p := range passengers {
		docs = append(docs, p.Narrate())
	}

	result, err := s.pipeline.Ingest(ctx, &pipeline.IngestRequest{
		Source:    source,
		Documents: docs,
	})
	if err != nil {
		return nil, err
	}
	return toIngestRespond(result), nil
}

func toIngestRespond(result *pipeline.IngestResult) *respond.IngestRespond {
	if result == nil {
		return &respond.IngestRespond{}
	}
	return &respond.IngestRespond{
		Source:     result.Source,
		Documents:  result.Documents,
		Chunks:     result.Chunks,
		VectorsOK:  result.VectorsOK,
		PurgedOld:  result.PurgedOld,
		DurationMs: result.DurationMs,
	}
}
