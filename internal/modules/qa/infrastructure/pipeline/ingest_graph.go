package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"DataLink/internal/modules/qa/domain/knowledge"
	"DataLink/internal/modules/qa/domain/repository"
	"DataLink/pkg/util"
	"DataLink/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// ingestState 文档摄取 Pipeline 的中间状态（在节点间传递）
type ingestState struct {
	Req       *IngestRequest
	Docs      []*schema.Document           // 切片后的文档片段
	Vectors   [][]float32                  // 每个片段的向量
	Items     []repository.VectorUpsertItem // Milvus upsert 项
	Rows      []*knowledge.DocumentChunk   // MySQL 切片行
	PurgedOld int
	Start     time.Time
	ChunkMs   int64
	EmbedMs   int64
	UpsertMs  int64
	PersistMs int64
	Err       error
}

func (p *IngestPipeline) buildGraph(ctx context.Context) (compose.Runnable[*IngestRequest, *IngestResult], error) {
	const (
		Validate    = "Validate"
		Purge       = "Purge"
		Chunk       = "Chunk"
		Embed       = "Embed"
		Upsert      = "Upsert"
		Persist     = "Persist"
		BuildResult = "BuildResult"
	)
	g := compose.NewGraph[*IngestRequest, *IngestResult]()
	_ = g.AddLambdaNode(Validate, compose.InvokableLambdaWithOption(p.validateNode), compose.WithNodeName(Validate))
	_ = g.AddLambdaNode(Purge, compose.InvokableLambdaWithOption(p.purgeNode), compose.WithNodeName(Purge))
	_ = g.AddLambdaNode(Chunk, compose.InvokableLambdaWithOption(p.chunkNode), compose.WithNodeName(Chunk))
	_ = g.AddLambdaNode(Embed, compose.InvokableLambdaWithOption(p.embedNode), compose.WithNodeName(Embed))
	_ = g.AddLambdaNode(Upsert, compose.InvokableLambdaWithOption(p.upsertNode), compose.WithNodeName(Upsert))
	_ = g.AddLambdaNode(Persist, compose.InvokableLambdaWithOption(p.persistNode), compose.WithNodeName(Persist))
	_ = g.AddLambdaNode(BuildResult, compose.InvokableLambdaWithOption(p.buildResultNode), compose.WithNodeName(BuildResult))
	_ = g.AddEdge(compose.START, Validate)
	_ = g.AddEdge(Validate, Purge)
	_ = g.AddEdge(Purge, Chunk)
	_ = g.AddEdge(Chunk, Embed)
	_ = g.AddEdge(Embed, Upsert)
	_ = g.AddEdge(Upsert, Persist)
	_ = g.AddEdge(Persist, BuildResult)
	_ = g.AddEdge(BuildResult, compose.END)
	return g.Compile(ctx, compose.WithGraphName("DocumentIngestPipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// validateNode 节点 1：校验请求参数
func (p *IngestPipeline) validateNode(ctx context.Context, req *IngestRequest, _ ...any) (*ingestState, error) {
	_ = ctx
	st := &ingestState{Req: req, Start: time.Now()}
	if req == nil {
		st.Err = fmt.Errorf("ingest request is nil")
		return st, nil
	}
	req.Source = strings.TrimSpace(req.Source)
	if req.Source == "" {
		st.Err = fmt.Errorf("missing source")
		return st, nil
	}
	docs := make([]string, 0, len(req.Documents))
	for _, d := range req.Documents {
		if strings.TrimSpace(d) != "" {
			docs = append(docs, d)
		}
	}
	req.Documents = docs
	if len(docs) == 0 {
		st.Err = fmt.Errorf("no documents to ingest")
		return st, nil
	}
	return st, nil
}

// purgeNode 节点 2：清理同 source 的旧切片与旧向量（整体替换语义）
func (p *IngestPipeline) purgeNode(ctx context.Context, st *ingestState, _ ...any) (*ingestState, error) {
	if st == nil {
		return &ingestState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	purged, err := p.PurgeSource(ctx, st.Req.Source)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.PurgedOld = purged
	return st, nil
}

// chunkNode 节点 3：切片
func (p *IngestPipeline) chunkNode(ctx context.Context, st *ingestState, _ ...any) (*ingestState, error) {
	if st == nil {
		return &ingestState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	chunkStart := time.Now()
	docs := make([]*schema.Document, 0, len(st.Req.Documents))
	for i, d := range st.Req.Documents {
		docs = append(docs, &schema.Document{
			Content: d,
			MetaData: map[string]any{
				"source":    st.Req.Source,
				"doc_index": i,
			},
		})
	}
	chunked, err := p.chunker.ChunkDocuments(ctx, docs)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.Docs = chunked
	st.ChunkMs = time.Since(chunkStart).Milliseconds()
	return st, nil
}

// embedNode 节点 4：片段向量化
func (p *IngestPipeline) embedNode(ctx context.Context, st *ingestState, _ ...any) (*ingestState, error) {
	if st == nil {
		return &ingestState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	if len(st.Docs) == 0 {
		st.Vectors = [][]float32{}
		return st, nil
	}
	embStart := time.Now()
	texts := make([]string, 0, len(st.Docs))
	for _, d := range st.Docs {
		texts = append(texts, d.Content)
	}
	vecs, err := p.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		st.Err = err
		return st, nil
	}
	if len(vecs) != len(texts) {
		st.Err = fmt.Errorf("embedding count mismatch: got=%d want=%d", len(vecs), len(texts))
		return st, nil
	}
	out := make([][]float32, 0, len(vecs))
	for i, v := range vecs {
		if len(v) != p.vectorDim {
			st.Err = fmt.Errorf("embedding dim mismatch at %d: got=%d want=%d", i, len(v), p.vectorDim)
			return st, nil
		}
		v32 := make([]float32, len(v))
		for j := range v {
			v32[j] = float32(v[j])
		}
		out = append(out, v32)
	}
	st.Vectors = out
	st.EmbedMs = time.Since(embStart).Milliseconds()
	return st, nil
}

// upsertNode 节点 5：写入 Milvus
func (p *IngestPipeline) upsertNode(ctx context.Context, st *ingestState, _ ...any) (*ingestState, error) {
	if st == nil {
		return &ingestState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	upsertStart := time.Now()
	now := time.Now()
	items := make([]repository.VectorUpsertItem, 0, len(st.Docs))
	rows := make([]*knowledge.DocumentChunk, 0, len(st.Docs))
	for i, d := range st.Docs {
		vectorID := fmt.Sprintf("vec_%s", util.GenerateID("V"))

		metaBytes, _ := json.Marshal(map[string]any{
			"source":      st.Req.Source,
			"chunk_index": i,
		})
		meta := string(metaBytes)

		sum := sha256.Sum256([]byte(d.Content))

		items = append(items, repository.VectorUpsertItem{
			ID:           vectorID,
			Vector:       st.Vectors[i],
			Source:       st.Req.Source,
			ChunkID:      int64(i),
			Content:      d.Content,
			MetadataJSON: meta,
		})
		rows = append(rows, &knowledge.DocumentChunk{
			Source:       st.Req.Source,
			ChunkIndex:   i,
			Content:      d.Content,
			ContentHash:  hex.EncodeToString(sum[:]),
			MetadataJson: meta,
			VectorId:     vectorID,
			CreatedAt:    now,
		})
	}
	if _, err := p.vs.Upsert(ctx, items); err != nil {
		st.Err = err
		return st, nil
	}
	st.Items = items
	st.Rows = rows
	st.UpsertMs = time.Since(upsertStart).Milliseconds()
	return st, nil
}

// persistNode 节点 6：切片行落 MySQL。
// 向量已入库后落库失败时回滚向量，避免两边不一致。
func (p *IngestPipeline) persistNode(ctx context.Context, st *ingestState, _ ...any) (*ingestState, error) {
	if st == nil {
		return &ingestState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	persistStart := time.Now()
	if err := p.chunks.CreateChunks(ctx, st.Rows); err != nil {
		ids := make([]string, 0, len(st.Items))
		for _, it := range st.Items {
			ids = append(ids, it.ID)
		}
		if rbErr := p.vs.DeleteByIDs(ctx, ids); rbErr != nil {
			zlog.Error("向量回滚失败", zap.String("source", st.Req.Source), zap.Error(rbErr))
		}
		st.Err = err
		return st, nil
	}
	st.PersistMs = time.Since(persistStart).Milliseconds()
	return st, nil
}

// buildResultNode 节点 7：组装最终响应结构
func (p *IngestPipeline) buildResultNode(ctx context.Context, st *ingestState, _ ...any) (*IngestResult, error) {
	_ = ctx
	if st == nil {
		return nil, fmt.Errorf("nil state")
	}
	res := &IngestResult{}
	if st.Req != nil {
		res.Source = st.Req.Source
		res.Documents = len(st.Req.Documents)
	}
	res.Chunks = len(st.Docs)
	res.VectorsOK = len(st.Items)
	res.PurgedOld = st.PurgedOld
	res.ChunkMs = st.ChunkMs
	res.EmbedMs = st.EmbedMs
	res.UpsertMs = st.UpsertMs
	res.PersistMs = st.PersistMs
	res.DurationMs = time.Since(st.Start).Milliseconds()

	zlog.Info(
		"qa ingest done",
		zap.String("source", res.Source),
		zap.Int("documents", res.Documents),
		zap.Int("chunks", res.Chunks),
		zap.Int("vectors_ok", res.VectorsOK),
		zap.Int("purged_old", res.PurgedOld),
		zap.Int64("chunk_ms", res.ChunkMs),
		zap.Int64("embed_ms", res.EmbedMs),
		zap.Int64("upsert_ms", res.UpsertMs),
		zap.Int64("persist_ms", res.PersistMs),
		zap.Int64("duration_ms", res.DurationMs),
		zap.Bool("failed", st.Err != nil),
	)
	return res, st.Err
}
