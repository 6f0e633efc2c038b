package pipeline

import (
	"context"
	"fmt"
	"strings"

	"DataLink/internal/modules/qa/domain/repository"
	"DataLink/internal/modules/qa/infrastructure/chunking"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/compose"
)

// IngestRequest 文档摄取 Pipeline 的输入。
// 同一个 source 整体替换：摄取前先清掉旧切片与旧向量。
type IngestRequest struct {
	Source    string   // 文档来源标识（必填，如 "titanic"、"manual"）
	Documents []string // 原始文本（逐篇切片）
}

// IngestResult 文档摄取 Pipeline 的输出
type IngestResult struct {
	Source     string `json:"source"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
	VectorsOK  int    `json:"vectors_ok"`
	PurgedOld  int    `json:"purged_old"`
	DurationMs int64  `json:"duration_ms"`
	ChunkMs    int64  `json:"chunk_ms"`
	EmbedMs    int64  `json:"embed_ms"`
	UpsertMs   int64  `json:"upsert_ms"`
	PersistMs  int64  `json:"persist_ms"`
}

// IngestPipeline 文档摄取 Pipeline（基于 Eino compose.Graph）。
//
// 节点顺序：Validate → Purge → Chunk → Embed → Upsert → Persist → BuildResult
// 切片内容与元数据写 MySQL（FULLTEXT），向量写 Milvus，vector_id 关联两边。
type IngestPipeline struct {
	chunks   repository.ChunkRepository
	vs       repository.VectorStore
	embedder embedding.Embedder

	chunker   *chunking.SimpleChunker
	vectorDim int
	r         compose.Runnable[*IngestRequest, *IngestResult]
}

func NewIngestPipeline(
	chunks repository.ChunkRepository,
	vs repository.VectorStore,
	embedder embedding.Embedder,
	chunker *chunking.SimpleChunker,
	vectorDim int,
) (*IngestPipeline, error) {
	if chunks == nil {
		return nil, fmt.Errorf("chunk repository is nil")
	}
	if vs == nil {
		return nil, fmt.Errorf("vector store is nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if chunker == nil {
		chunker = chunking.NewSimpleChunker(500, 50)
	}
	if vectorDim <= 0 {
		vectorDim = 768
	}
	p := &IngestPipeline{
		chunks:    chunks,
		vs:        vs,
		embedder:  embedder,
		chunker:   chunker,
		vectorDim: vectorDim,
	}
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

// Ingest 执行文档摄取（封装 Eino Runnable.Invoke）
func (p *IngestPipeline) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	if req == nil {
		return nil, fmt.Errorf("ingest request is nil")
	}
	if p.r == nil {
		return nil, fmt.Errorf("pipeline runnable is nil")
	}
	return p.r.Invoke(ctx, req)
}

// PurgeSource 清理某个 source 的全部切片与向量（重新摄取前调用）
func (p *IngestPipeline) PurgeSource(ctx context.Context, source string) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, fmt.Errorf("missing source")
	}
	ids, err := p.chunks.ListVectorIDsBySource(ctx, source)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		if err := p.vs.DeleteByIDs(ctx, ids); err != nil {
			return 0, err
		}
	}
	if err := p.chunks.DeleteBySource(ctx, source); err != nil {
		return 0, err
	}
	return len(ids), nil
}
