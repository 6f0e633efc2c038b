package repository

import (
	"context"

	"DataLink/internal/modules/qa/domain/knowledge"
)

// KnowledgeStats 知识库概况（管理端统计用）
type KnowledgeStats struct {
	ChunkCount  int64 `json:"chunk_count"`
	SourceCount int64 `json:"source_count"`
}

// ChunkRepository 知识库切片仓储（MySQL 侧）。
// SearchByKeyword 走 FULLTEXT 索引，向量检索由 VectorStore 负责。
type ChunkRepository interface {
	CreateChunks(ctx context.Context, chunks []*knowledge.DocumentChunk) error
	// SearchByKeyword 关键词全文检索，最多返回 limit 条
	SearchByKeyword(ctx context.Context, query string, limit int) ([]knowledge.DocumentChunk, error)
	// ListVectorIDsBySource 列出某个 source 下所有向量 ID（重新摄取前清理用）
	ListVectorIDsBySource(ctx context.Context, source string) ([]string, error)
	DeleteBySource(ctx context.Context, source string) error
	Stats(ctx context.Context) (*KnowledgeStats, error)
}

// IngestEventRepository 摄取事件仓储（消费侧幂等 + 状态跟踪）
type IngestEventRepository interface {
	// InsertIfAbsent 按 dedup_key 幂等插入，已存在时返回 false
	InsertIfAbsent(ctx context.Context, event *knowledge.IngestEvent) (bool, error)
	UpdateStatus(ctx context.Context, dedupKey string, status int8) error
}
