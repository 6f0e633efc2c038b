package service

import (
	"context"
	"fmt"

	"DataLink/internal/modules/qa/application/dto/respond"
	"DataLink/internal/modules/qa/domain/repository"
)

// AdminService 管理端统计服务接口
type AdminService interface {
	Stats(ctx context.Context) (*respond.StatsRespond, error)
}

type adminServiceImpl struct {
	chunks  repository.ChunkRepository
	dataset repository.DatasetRepository
}

// NewAdminService 创建管理端统计服务
func NewAdminService(chunks repository.ChunkRepository, dataset repository.DatasetRepository) AdminService {
	return &adminServiceImpl{chunks: chunks, dataset: dataset}
}

func (s *adminServiceImpl) Stats(ctx context.Context) (*respond.StatsRespond, error) {
	if s.chunks == nil {
		return nil, fmt.Errorf("chunk repository is nil")
	}
	stats, err := s.chunks.Stats(ctx)
	if err != nil {
		return nil, err
	}
	resp := &respond.StatsRespond{
		ChunkCount:  stats.ChunkCount,
		SourceCount: stats.SourceCount,
	}
	if s.dataset != nil {
		count, err := s.dataset.CountPassengers(ctx)
		if err != nil {
			return nil, err
		}
		resp.PassengerCount = count
	}
	return resp, nil
}
