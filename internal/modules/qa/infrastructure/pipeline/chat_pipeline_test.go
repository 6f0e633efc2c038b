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
	"DataLink/internal/modules/qa/infrastructure/llm"
)

// 各提示词模板中稳定存在的片段，脚本化模型用它们区分调用类型
const (
	rewriteMark   = "Standalone Question:"
	classifyMark  = "Classify the user's question"
	sqlMark       = "MySQL expert"
	knowledgeMark = "### Context:"
	narrateMark   = "Summarize this result"
)

func newTestChatPipeline(t *testing.T, cm *scriptedChatModel, store repository.StructuredStore,
	vs *mockVectorStore, chunks *mockChunkRepo, narrateRows bool) *ChatPipeline {
	t.Helper()
	if store == nil {
		store = &mockStructuredStore{}
	}
	if vs == nil {
		vs = &mockVectorStore{}
	}
	if chunks == nil {
		chunks = &mockChunkRepo{}
	}
	retriever := newTestRetrievePipeline(t, vs, chunks)
	completer := llm.NewCompleter(cm, 0, 0)
	p, err := NewChatPipeline(completer, retriever, store, 5, 4, narrateRows)
	require.NoError(t, err)
	return p
}

func TestChatPipeline_Database(t *testing.T) {
	ctx := context.Background()

	t.Run("NL2SQL 执行并格式化标量结果", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "SELECT COUNT(*) FROM titanic WHERE survived = 1;"},
		}}
		store := &mockStructuredStore{result: &repository.SQLResult{
			Columns: []string{"COUNT(*)"},
			Rows:    [][]any{{int64(342)}},
		}}
		p := newTestChatPipeline(t, cm, store, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "How many passengers survived?"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.ClassDatabase, res.Classification)
		assert.Equal(t, "The answer is 342.", res.Answer)
		assert.Equal(t, "SELECT COUNT(*) FROM titanic WHERE survived = 1;", res.SQL)
		require.Len(t, store.executed, 1)
	})

	t.Run("模型输出带围栏时先提取再执行", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "```sql\nSELECT COUNT(*) FROM titanic;\n```"},
		}}
		store := &mockStructuredStore{result: &repository.SQLResult{
			Columns: []string{"COUNT(*)"},
			Rows:    [][]any{{int64(891)}},
		}}
		p := newTestChatPipeline(t, cm, store, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "total count"})
		require.NoError(t, err)
		assert.Equal(t, "SELECT COUNT(*) FROM titanic;", res.SQL)
		assert.Equal(t, "The answer is 891.", res.Answer)
	})

	t.Run("不安全 SQL 绝不触库", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "DROP TABLE titanic;"},
		}}
		store := &mockStructuredStore{}
		p := newTestChatPipeline(t, cm, store, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "delete everything"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.AnswerUnsafeQuery, res.Answer)
		assert.Empty(t, res.SQL)
		assert.Empty(t, store.executed)
	})

	t.Run("执行失败按原样回报给用户而非系统错误", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "SELECT unknown_col FROM titanic;"},
		}}
		store := &mockStructuredStore{err: errors.New("Unknown column 'unknown_col'")}
		p := newTestChatPipeline(t, cm, store, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "weird question"})
		require.NoError(t, err)
		assert.Equal(t, "Error executing generated SQL: Unknown column 'unknown_col'", res.Answer)
	})

	t.Run("零行返回固定文案", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "SELECT * FROM titanic WHERE age > 200;"},
		}}
		store := &mockStructuredStore{result: &repository.SQLResult{Columns: []string{"age"}}}
		p := newTestChatPipeline(t, cm, store, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "passengers older than 200"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.AnswerNoRecords, res.Answer)
	})

	t.Run("开启转述时多行结果用模型概括", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "SELECT sex, COUNT(*) FROM titanic GROUP BY sex;"},
			{match: narrateMark, reply: "There were 314 female and 577 male passengers."},
		}}
		store := &mockStructuredStore{result: &repository.SQLResult{
			Columns: []string{"sex", "COUNT(*)"},
			Rows:    [][]any{{"female", int64(314)}, {"male", int64(577)}},
		}}
		p := newTestChatPipeline(t, cm, store, nil, nil, true)

		res, err := p.Chat(ctx, &ChatRequest{Question: "count of male and female passengers"})
		require.NoError(t, err)
		assert.Equal(t, "There were 314 female and 577 male passengers.", res.Answer)
	})

	t.Run("转述失败时保留表格文本", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "SELECT sex, COUNT(*) FROM titanic GROUP BY sex;"},
			{match: narrateMark, err: errors.New("model overloaded")},
		}}
		store := &mockStructuredStore{result: &repository.SQLResult{
			Columns: []string{"sex", "COUNT(*)"},
			Rows:    [][]any{{"female", int64(314)}, {"male", int64(577)}},
		}}
		p := newTestChatPipeline(t, cm, store, nil, nil, true)

		res, err := p.Chat(ctx, &ChatRequest{Question: "count of male and female passengers"})
		require.NoError(t, err)
		assert.Contains(t, res.Answer, "Query result (2 rows):")
	})
}

func TestChatPipeline_Knowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("召回片段拼上下文生成回答", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "knowledge"},
			{match: knowledgeMark, reply: "Employees get 20 days of annual leave."},
		}}
		vs := &mockVectorStore{hits: []repository.VectorSearchHit{
			{Content: "Annual leave is 20 days per year.", Score: 0.9},
		}}
		p := newTestChatPipeline(t, cm, nil, vs, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "what is the leave policy"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.ClassKnowledge, res.Classification)
		assert.Equal(t, "Employees get 20 days of annual leave.", res.Answer)
		assert.Equal(t, 1, res.Sources)
	})

	t.Run("零召回返回固定文案且不调用生成", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "knowledge"},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "something undocumented"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.AnswerNoKnowledge, res.Answer)
		assert.Zero(t, res.Sources)
		assert.Zero(t, cm.callsMatching(knowledgeMark))
	})

	t.Run("生成失败时兜底罗列召回片段", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "knowledge"},
			{match: knowledgeMark, err: errors.New("model overloaded")},
		}}
		vs := &mockVectorStore{hits: []repository.VectorSearchHit{
			{Content: "Annual leave is 20 days per year.", Score: 0.9},
		}}
		p := newTestChatPipeline(t, cm, nil, vs, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "what is the leave policy"})
		require.NoError(t, err)
		assert.Contains(t, res.Answer, "Here is the most relevant information found:")
		assert.Contains(t, res.Answer, "Annual leave is 20 days per year.")
	})

	t.Run("关键词命中同样可以支撑回答", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "knowledge"},
			{match: knowledgeMark, reply: "Remote work is allowed twice a week."},
		}}
		chunks := &mockChunkRepo{keywordHits: []knowledge.DocumentChunk{
			{Content: "Remote work policy: up to two days per week."},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, chunks, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "remote work policy"})
		require.NoError(t, err)
		assert.Equal(t, "Remote work is allowed twice a week.", res.Answer)
	})
}

func TestChatPipeline_Routing(t *testing.T) {
	ctx := context.Background()

	t.Run("寒暄走固定话术且不再调用模型", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "conversational"},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "hello there"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.AnswerGreeting, res.Answer)
		assert.Len(t, cm.prompts, 1) // 只有分类这一次调用
	})

	t.Run("无关问题返回固定提示", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "irrelevant"},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "what is the weather on mars"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.AnswerIrrelevant, res.Answer)
	})

	t.Run("分类输出意外时按 irrelevant 处理", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "I have no idea"},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "gibberish"})
		require.NoError(t, err)
		assert.Equal(t, chatbot.ClassIrrelevant, res.Classification)
		assert.Equal(t, chatbot.AnswerIrrelevant, res.Answer)
	})

	t.Run("分类失败时整体报错", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, err: errors.New("model down")},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		_, err := p.Chat(ctx, &ChatRequest{Question: "hello"})
		require.Error(t, err)
		var perr *chatbot.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "classify", perr.Stage)
	})
}

func TestChatPipeline_Rewrite(t *testing.T) {
	ctx := context.Background()

	t.Run("历史为空时不调用改写", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: classifyMark, reply: "irrelevant"},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{Question: "first question"})
		require.NoError(t, err)
		assert.Equal(t, "first question", res.SearchQuery)
		assert.Zero(t, cm.callsMatching(rewriteMark))
	})

	t.Run("带历史时改写为独立问题", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: rewriteMark, reply: "Standalone Question: How many men survived?"},
			{match: classifyMark, reply: "database"},
			{match: sqlMark, reply: "SELECT COUNT(*) FROM titanic WHERE survived = 1 AND sex = 'male';"},
		}}
		store := &mockStructuredStore{result: &repository.SQLResult{
			Columns: []string{"COUNT(*)"},
			Rows:    [][]any{{int64(109)}},
		}}
		p := newTestChatPipeline(t, cm, store, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{
			Question: "what about men",
			History: []chatbot.ChatTurn{
				{Role: "user", Content: "how many women survived"},
				{Role: "assistant", Content: "233 female passengers survived."},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "How many men survived?", res.SearchQuery)
		assert.Equal(t, "The answer is 109.", res.Answer)
	})

	t.Run("改写返回空串时退回原始问题", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: rewriteMark, reply: "   "},
			{match: classifyMark, reply: "irrelevant"},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		res, err := p.Chat(ctx, &ChatRequest{
			Question: "what about men",
			History:  []chatbot.ChatTurn{{Role: "user", Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "what about men", res.SearchQuery)
	})

	t.Run("改写失败时整体报错", func(t *testing.T) {
		cm := &scriptedChatModel{rules: []scriptedRule{
			{match: rewriteMark, err: errors.New("model down")},
		}}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)

		_, err := p.Chat(ctx, &ChatRequest{
			Question: "what about men",
			History:  []chatbot.ChatTurn{{Role: "user", Content: "hi"}},
		})
		require.Error(t, err)
		var perr *chatbot.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "rewrite", perr.Stage)
	})

	t.Run("空问题直接报错", func(t *testing.T) {
		cm := &scriptedChatModel{}
		p := newTestChatPipeline(t, cm, nil, nil, nil, false)
		_, err := p.Chat(ctx, &ChatRequest{Question: "  "})
		require.Error(t, err)
		assert.Empty(t, cm.prompts)
	})
}
