package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/domain/knowledge"
	"DataLink/internal/modules/qa/domain/repository"
	"DataLink/internal/modules/qa/infrastructure/embedding"
)

const testDim = 8

func newTestRetrievePipeline(t *testing.T, vs *mockVectorStore, chunks *mockChunkRepo) *RetrievePipeline {
	t.Helper()
	p, err := NewRetrievePipeline(embedding.NewMockEmbedder(testDim), vs, chunks, testDim)
	require.NoError(t, err)
	return p
}

func TestRetrievePipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("向量分数换算为 distance 并按升序返回", func(t *testing.T) {
		vs := &mockVectorStore{hits: []repository.VectorSearchHit{
			{Content: "far", Score: 0.2},
			{Content: "near", Score: 0.9},
		}}
		p := newTestRetrievePipeline(t, vs, &mockChunkRepo{})
		res, err := p.Retrieve(ctx, &RetrieveRequest{Question: "leave policy", TopK: 5})
		require.NoError(t, err)
		require.Len(t, res.Results, 2)
		assert.Equal(t, "near", res.Results[0].Content)
		assert.InDelta(t, 0.1, res.Results[0].Distance, 1e-6)
		assert.Equal(t, "far", res.Results[1].Content)
		assert.InDelta(t, 0.8, res.Results[1].Distance, 1e-6)
	})

	t.Run("关键词命中排在向量命中之前", func(t *testing.T) {
		vs := &mockVectorStore{hits: []repository.VectorSearchHit{{Content: "vec", Score: 0.95}}}
		chunks := &mockChunkRepo{keywordHits: []knowledge.DocumentChunk{{Content: "kw"}}}
		p := newTestRetrievePipeline(t, vs, chunks)
		res, err := p.Retrieve(ctx, &RetrieveRequest{Question: "leave policy", TopK: 5})
		require.NoError(t, err)
		require.Len(t, res.Results, 2)
		assert.Equal(t, "kw", res.Results[0].Content)
		assert.Equal(t, 0.0, res.Results[0].Distance)
		assert.Equal(t, 1, res.VectorHits)
		assert.Equal(t, 1, res.KeywordHits)
	})

	t.Run("两路均空时标记 is_empty", func(t *testing.T) {
		p := newTestRetrievePipeline(t, &mockVectorStore{}, &mockChunkRepo{})
		res, err := p.Retrieve(ctx, &RetrieveRequest{Question: "anything"})
		require.NoError(t, err)
		assert.True(t, res.IsEmpty)
		assert.Empty(t, res.Results)
		assert.NotEmpty(t, res.QueryID)
	})

	t.Run("关键词路失败时降级为纯向量召回", func(t *testing.T) {
		vs := &mockVectorStore{hits: []repository.VectorSearchHit{{Content: "vec", Score: 0.9}}}
		chunks := &mockChunkRepo{keywordErr: errors.New("fulltext index missing")}
		p := newTestRetrievePipeline(t, vs, chunks)
		res, err := p.Retrieve(ctx, &RetrieveRequest{Question: "leave policy"})
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "vec", res.Results[0].Content)
	})

	t.Run("向量路失败时整体报错", func(t *testing.T) {
		vs := &mockVectorStore{searchErr: errors.New("milvus down")}
		p := newTestRetrievePipeline(t, vs, &mockChunkRepo{})
		_, err := p.Retrieve(ctx, &RetrieveRequest{Question: "leave policy"})
		require.Error(t, err)
	})

	t.Run("空问题直接报错", func(t *testing.T) {
		p := newTestRetrievePipeline(t, &mockVectorStore{}, &mockChunkRepo{})
		_, err := p.Retrieve(ctx, &RetrieveRequest{Question: "   "})
		require.Error(t, err)
	})

	t.Run("向量化失败包装为 ProviderError", func(t *testing.T) {
		vs := &mockVectorStore{}
		p, err := NewRetrievePipeline(failingEmbedder{}, vs, &mockChunkRepo{}, testDim)
		require.NoError(t, err)
		_, err = p.Retrieve(ctx, &RetrieveRequest{Question: "leave policy"})
		require.Error(t, err)
		var perr *chatbot.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "embedding", perr.Stage)
	})
}
