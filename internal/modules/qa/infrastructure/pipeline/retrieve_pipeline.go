package pipeline

import (
	"context"
	"fmt"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/domain/repository"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/compose"
)

// RetrieveRequest 混合召回 Pipeline 的输入请求
type RetrieveRequest struct {
	Question string // 用户问题（必填）
	TopK     int    // 返回 Top-K 条（默认 5，范围 1-50）
}

// RetrieveResult 混合召回 Pipeline 的输出结果
type RetrieveResult struct {
	QueryID       string                    // 本次查询唯一 ID（便于追踪回放）
	Question      string                    // 原始用户问题
	Results       []chatbot.RetrievalResult // 合并后的最终结果（按 distance 升序）
	VectorHits    int                       // 向量侧命中数（合并前）
	KeywordHits   int                       // 关键词侧命中数（合并前）
	ReturnedCount int                       // 最终返回条数
	DurationMs    int64                     // 召回总耗时（毫秒）
	EmbeddingMs   int64                     // 向量化耗时（毫秒）
	SearchMs      int64                     // 向量检索耗时（毫秒）
	KeywordMs     int64                     // 关键词检索耗时（毫秒）
	IsEmpty       bool                      // 两路均未命中
}

// RetrievePipeline 混合召回 Pipeline（基于 Eino compose.Graph）。
//
// 两路召回后按内容合并：
// 1. 向量路：问题向量化 → Milvus COSINE 检索，distance = 1 - score
// 2. 关键词路：MySQL FULLTEXT 检索，命中视为强相关（distance 0.0）
// 合并去重后按 distance 升序截断 TopK。
type RetrievePipeline struct {
	embedder  embedding.Embedder
	vs        repository.VectorStore
	chunks    repository.ChunkRepository
	vectorDim int
	r         compose.Runnable[*RetrieveRequest, *RetrieveResult]
}

func NewRetrievePipeline(
	embedder embedding.Embedder,
	vs repository.VectorStore,
	chunks repository.ChunkRepository,
	vectorDim int,
) (*RetrievePipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if vs == nil {
		return nil, fmt.Errorf("vector store is nil")
	}
	if chunks == nil {
		return nil, fmt.Errorf("chunk repository is nil")
	}
	if vectorDim <= 0 {
		vectorDim = 768
	}
	p := &RetrievePipeline{
		embedder:  embedder,
		vs:        vs,
		chunks:    chunks,
		vectorDim: vectorDim,
	}
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

// Retrieve 执行混合召回（封装 Eino Runnable.Invoke）
func (p *RetrievePipeline) Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResult, error) {
	if req == nil {
		return nil, fmt.Errorf("retrieve request is nil")
	}
	if p.r == nil {
		return nil, fmt.Errorf("pipeline runnable is nil")
	}
	return p.r.Invoke(ctx, req)
}

// normalizeTopK 规范化 TopK 参数（默认 5，范围 1-50）
func normalizeTopK(topK int) int {
	if topK <= 0 {
		return 5
	}
	if topK > 50 {
		return 50
	}
	return topK
}
