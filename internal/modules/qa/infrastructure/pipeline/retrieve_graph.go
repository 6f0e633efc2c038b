package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/pkg/util"
	"DataLink/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"
)

// retrieveState 混合召回 Pipeline 的中间状态（在节点间传递）
type retrieveState struct {
	Req         *RetrieveRequest
	QueryVec    []float32                 // Query 向量
	VectorHits  []chatbot.RetrievalResult // 向量路命中（已换算为 distance）
	KeywordHits []chatbot.RetrievalResult // 关键词路命中（distance 恒为 0.0）
	Merged      []chatbot.RetrievalResult // 合并去重后的最终结果
	Start       time.Time
	EmbeddingMs int64
	SearchMs    int64
	KeywordMs   int64
	Err         error // 错误（如果有）
}

// buildGraph 构建混合召回 Pipeline 的 Eino Graph
//
// 节点顺序：Validate → EmbedQuery → SearchVector → SearchKeyword → Merge → BuildResult
func (p *RetrievePipeline) buildGraph(ctx context.Context) (compose.Runnable[*RetrieveRequest, *RetrieveResult], error) {
	const (
		Validate      = "Validate"
		EmbedQuery    = "EmbedQuery"
		SearchVector  = "SearchVector"
		SearchKeyword = "SearchKeyword"
		Merge         = "Merge"
		BuildResult   = "BuildResult"
	)
	g := compose.NewGraph[*RetrieveRequest, *RetrieveResult]()
	// 添加节点
	_ = g.AddLambdaNode(Validate, compose.InvokableLambdaWithOption(p.validateNode), compose.WithNodeName(Validate))
	_ = g.AddLambdaNode(EmbedQuery, compose.InvokableLambdaWithOption(p.embedQueryNode), compose.WithNodeName(EmbedQuery))
	_ = g.AddLambdaNode(SearchVector, compose.InvokableLambdaWithOption(p.searchVectorNode), compose.WithNodeName(SearchVector))
	_ = g.AddLambdaNode(SearchKeyword, compose.InvokableLambdaWithOption(p.searchKeywordNode), compose.WithNodeName(SearchKeyword))
	_ = g.AddLambdaNode(Merge, compose.InvokableLambdaWithOption(p.mergeNode), compose.WithNodeName(Merge))
	_ = g.AddLambdaNode(BuildResult, compose.InvokableLambdaWithOption(p.buildResultNode), compose.WithNodeName(BuildResult))
	// 添加边（定义节点顺序）
	_ = g.AddEdge(compose.START, Validate)
	_ = g.AddEdge(Validate, EmbedQuery)
	_ = g.AddEdge(EmbedQuery, SearchVector)
	_ = g.AddEdge(SearchVector, SearchKeyword)
	_ = g.AddEdge(SearchKeyword, Merge)
	_ = g.AddEdge(Merge, BuildResult)
	_ = g.AddEdge(BuildResult, compose.END)
	// 编译为 Runnable
	return g.Compile(ctx, compose.WithGraphName("HybridRetrievePipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// validateNode 节点 1：校验请求参数
func (p *RetrievePipeline) validateNode(ctx context.Context, req *RetrieveRequest, _ ...any) (*retrieveState, error) {
	_ = ctx
	st := &retrieveState{
		Req:   req,
		Start: time.Now(),
	}
	if req == nil {
		st.Err = fmt.Errorf("retrieve request is nil")
		return st, nil
	}
	question := strings.TrimSpace(req.Question)
	req.Question = question
	if question == "" {
		st.Err = fmt.Errorf("missing question")
		return st, nil
	}
	req.TopK = normalizeTopK(req.TopK)
	return st, nil
}

// embedQueryNode 节点 2：将用户问题向量化
func (p *RetrievePipeline) embedQueryNode(ctx context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	if st == nil {
		return &retrieveState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	embStart := time.Now()
	vecs, err := p.embedder.EmbedStrings(ctx, []string{st.Req.Question})
	if err != nil {
		st.Err = chatbot.NewProviderError("embedding", err)
		return st, nil
	}
	if len(vecs) == 0 {
		st.Err = chatbot.NewProviderError("embedding", fmt.Errorf("embedding result is empty"))
		return st, nil
	}
	vec64 := vecs[0]
	if len(vec64) != p.vectorDim {
		st.Err = fmt.Errorf("embedding dim mismatch: got=%d want=%d", len(vec64), p.vectorDim)
		return st, nil
	}
	// 转换为 float32（Milvus 需要 float32）
	vec32 := make([]float32, len(vec64))
	for i := range vec64 {
		vec32[i] = float32(vec64[i])
	}
	st.QueryVec = vec32
	st.EmbeddingMs = time.Since(embStart).Milliseconds()
	return st, nil
}

// searchVectorNode 节点 3：向量检索，并把 COSINE score 换算为 distance = 1 - score
func (p *RetrievePipeline) searchVectorNode(ctx context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	if st == nil {
		return &retrieveState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	if len(st.QueryVec) == 0 {
		st.Err = fmt.Errorf("query vector is empty")
		return st, nil
	}
	searchStart := time.Now()
	hits, err := p.vs.Search(ctx, st.QueryVec, st.Req.TopK)
	if err != nil {
		st.Err = err
		return st, nil
	}
	out := make([]chatbot.RetrievalResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, chatbot.RetrievalResult{
			Content:      h.Content,
			MetadataJSON: h.MetadataJSON,
			Distance:     1 - float64(h.Score),
		})
	}
	st.VectorHits = out
	st.SearchMs = time.Since(searchStart).Milliseconds()
	return st, nil
}

// searchKeywordNode 节点 4：FULLTEXT 关键词检索，命中视为强相关（distance 0.0）
func (p *RetrievePipeline) searchKeywordNode(ctx context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	if st == nil {
		return &retrieveState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	kwStart := time.Now()
	chunks, err := p.chunks.SearchByKeyword(ctx, st.Req.Question, st.Req.TopK)
	if err != nil {
		// 关键词路失败只降级不整体报错，向量路结果仍然可用
		zlog.Warn("关键词检索失败，降级为纯向量召回", zap.Error(err))
		st.KeywordHits = []chatbot.RetrievalResult{}
		st.KeywordMs = time.Since(kwStart).Milliseconds()
		return st, nil
	}
	out := make([]chatbot.RetrievalResult, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, chatbot.RetrievalResult{
			Content:      c.Content,
			MetadataJSON: c.MetadataJson,
			Distance:     0.0,
		})
	}
	st.KeywordHits = out
	st.KeywordMs = time.Since(kwStart).Milliseconds()
	return st, nil
}

// mergeNode 节点 5：按内容合并两路结果（去重、排序、截断）
func (p *RetrievePipeline) mergeNode(ctx context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	_ = ctx
	if st == nil {
		return &retrieveState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	st.Merged = chatbot.MergeHybrid(st.VectorHits, st.KeywordHits, st.Req.TopK)
	return st, nil
}

// buildResultNode 节点 6：组装最终响应结构
func (p *RetrievePipeline) buildResultNode(ctx context.Context, st *retrieveState, _ ...any) (*RetrieveResult, error) {
	_ = ctx
	if st == nil {
		return nil, fmt.Errorf("nil state")
	}
	res := &RetrieveResult{}
	if st.Req != nil {
		res.Question = st.Req.Question
	}
	// 生成唯一的 query_id（用于日志回放）
	res.QueryID = fmt.Sprintf("q_%s_%d", util.GenerateID("Q"), time.Now().UnixNano())
	res.Results = st.Merged
	res.VectorHits = len(st.VectorHits)
	res.KeywordHits = len(st.KeywordHits)
	res.ReturnedCount = len(st.Merged)
	res.EmbeddingMs = st.EmbeddingMs
	res.SearchMs = st.SearchMs
	res.KeywordMs = st.KeywordMs
	res.DurationMs = time.Since(st.Start).Milliseconds()
	if res.ReturnedCount == 0 {
		res.IsEmpty = true
	}

	zlog.Info(
		"qa retrieve done",
		zap.String("query_id", res.QueryID),
		zap.String("question", res.Question),
		zap.Int("vector_hits", res.VectorHits),
		zap.Int("keyword_hits", res.KeywordHits),
		zap.Int("returned_count", res.ReturnedCount),
		zap.Int64("embedding_ms", res.EmbeddingMs),
		zap.Int64("search_ms", res.SearchMs),
		zap.Int64("keyword_ms", res.KeywordMs),
		zap.Int64("duration_ms", res.DurationMs),
		zap.Bool("is_empty", res.IsEmpty),
	)
	return res, st.Err
}
