package persistence

import (
	"context"
	"strings"

	"DataLink/internal/modules/qa/domain/knowledge"
	"DataLink/internal/modules/qa/domain/repository"

	"gorm.io/gorm"
)

type chunkRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) repository.ChunkRepository {
	return &chunkRepositoryImpl{db: db}
}

func (r *chunkRepositoryImpl) CreateChunks(ctx context.Context, chunks []*knowledge.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(chunks, 200).Error
}

// SearchByKeyword 走 FULLTEXT 索引做自然语言检索。
// 查询串为空或召回为零时返回空切片，不报错。
func (r *chunkRepositoryImpl) SearchByKeyword(ctx context.Context, query string, limit int) ([]knowledge.DocumentChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []knowledge.DocumentChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}
	var chunks []knowledge.DocumentChunk
	err := r.db.WithContext(ctx).
		Where("MATCH (content) AGAINST (? IN NATURAL LANGUAGE MODE)", query).
		Limit(limit).
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *chunkRepositoryImpl) ListVectorIDsBySource(ctx context.Context, source string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&knowledge.DocumentChunk{}).
		Where("source = ?", source).
		Pluck("vector_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *chunkRepositoryImpl) DeleteBySource(ctx context.Context, source string) error {
	return r.db.WithContext(ctx).
		Where("source = ?", source).
		Delete(&knowledge.DocumentChunk{}).Error
}

func (r *chunkRepositoryImpl) Stats(ctx context.Context) (*repository.KnowledgeStats, error) {
	var stats repository.KnowledgeStats
	err := r.db.WithContext(ctx).
		Model(&knowledge.DocumentChunk{}).
		Count(&stats.ChunkCount).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&knowledge.DocumentChunk{}).
		Distinct("source").
		Count(&stats.SourceCount).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
