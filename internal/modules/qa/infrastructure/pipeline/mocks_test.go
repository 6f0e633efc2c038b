package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"DataLink/internal/modules/qa/domain/knowledge"
	"DataLink/internal/modules/qa/domain/repository"
)

// mockVectorStore 内存向量库桩
type mockVectorStore struct {
	mu         sync.Mutex
	hits       []repository.VectorSearchHit
	searchErr  error
	upsertErr  error
	upserted   []repository.VectorUpsertItem
	deletedIDs []string
}

func (m *mockVectorStore) Upsert(ctx context.Context, items []repository.VectorUpsertItem) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserted = append(m.upserted, items...)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func (m *mockVectorStore) DeleteByIDs(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedIDs = append(m.deletedIDs, ids...)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]repository.VectorSearchHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.hits) > topK {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

// mockChunkRepo 内存切片仓储桩
type mockChunkRepo struct {
	mu            sync.Mutex
	keywordHits   []knowledge.DocumentChunk
	keywordErr    error
	createErr     error
	created       []*knowledge.DocumentChunk
	vectorIDs     []string
	deletedSource []string
}

func (m *mockChunkRepo) CreateChunks(ctx context.Context, chunks []*knowledge.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, chunks...)
	return nil
}

func (m *mockChunkRepo) SearchByKeyword(ctx context.Context, query string, limit int) ([]knowledge.DocumentChunk, error) {
	if m.keywordErr != nil {
		return nil, m.keywordErr
	}
	if len(m.keywordHits) > limit {
		return m.keywordHits[:limit], nil
	}
	return m.keywordHits, nil
}

func (m *mockChunkRepo) ListVectorIDsBySource(ctx context.Context, source string) ([]string, error) {
	return m.vectorIDs, nil
}

func (m *mockChunkRepo) DeleteBySource(ctx context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedSource = append(m.deletedSource, source)
	return nil
}

func (m *mockChunkRepo) Stats(ctx context.Context) (*repository.KnowledgeStats, error) {
	return &repository.KnowledgeStats{}, nil
}

// mockStructuredStore 只读查询桩
type mockStructuredStore struct {
	result   *repository.SQLResult
	err      error
	executed []string
}

func (m *mockStructuredStore) ExecuteReadOnly(ctx context.Context, sql string) (*repository.SQLResult, error) {
	m.executed = append(m.executed, sql)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// failingEmbedder 恒失败的向量器桩
type failingEmbedder struct{}

func (failingEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...einoEmbedding.Option) ([][]float64, error) {
	return nil, fmt.Errorf("embedding backend unavailable")
}

// scriptedRule 按提示词子串匹配返回预设回复
type scriptedRule struct {
	match string
	reply string
	err   error
}

// scriptedChatModel 脚本化模型桩：逐条规则匹配提示词，记录全部调用。
type scriptedChatModel struct {
	mu      sync.Mutex
	rules   []scriptedRule
	prompts []string
}

func (m *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompt := ""
	if len(input) > 0 && input[len(input)-1] != nil {
		prompt = input[len(input)-1].Content
	}
	m.prompts = append(m.prompts, prompt)
	for _, r := range m.rules {
		if strings.Contains(prompt, r.match) {
			if r.err != nil {
				return nil, r.err
			}
			return schema.AssistantMessage(r.reply, nil), nil
		}
	}
	return nil, fmt.Errorf("no scripted reply for prompt: %.60s", prompt)
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported in tests")
}

// callsMatching 统计命中某个子串的调用次数
func (m *scriptedChatModel) callsMatching(sub string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if strings.Contains(p, sub) {
			n++
		}
	}
	return n
}
