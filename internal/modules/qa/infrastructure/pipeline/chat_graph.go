package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/infrastructure/sqlgen"
	"DataLink/pkg/util"
	"DataLink/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"
)

// chatState 问答 Pipeline 的中间状态（在节点间传递）
type chatState struct {
	Req         *ChatRequest
	SearchQuery string                 // 改写后的检索问题
	Class       chatbot.Classification // 分类结果
	Answer      string
	SQL         string // database 路径生成并通过门禁的 SQL
	Sources     int    // knowledge 路径引用的片段数
	Start       time.Time
	RewriteMs   int64
	ClassifyMs  int64
	AnswerMs    int64
	Err         error
}

func (p *ChatPipeline) buildGraph(ctx context.Context) (compose.Runnable[*ChatRequest, *ChatResult], error) {
	const (
		Validate    = "Validate"
		Rewrite     = "Rewrite"
		Classify    = "Classify"
		Answer      = "Answer"
		BuildResult = "BuildResult"
	)
	g := compose.NewGraph[*ChatRequest, *ChatResult]()
	_ = g.AddLambdaNode(Validate, compose.InvokableLambdaWithOption(p.validateNode), compose.WithNodeName(Validate))
	_ = g.AddLambdaNode(Rewrite, compose.InvokableLambdaWithOption(p.rewriteNode), compose.WithNodeName(Rewrite))
	_ = g.AddLambdaNode(Classify, compose.InvokableLambdaWithOption(p.classifyNode), compose.WithNodeName(Classify))
	_ = g.AddLambdaNode(Answer, compose.InvokableLambdaWithOption(p.answerNode), compose.WithNodeName(Answer))
	_ = g.AddLambdaNode(BuildResult, compose.InvokableLambdaWithOption(p.buildResultNode), compose.WithNodeName(BuildResult))
	_ = g.AddEdge(compose.START, Validate)
	_ = g.AddEdge(Validate, Rewrite)
	_ = g.AddEdge(Rewrite, Classify)
	_ = g.AddEdge(Classify, Answer)
	_ = g.AddEdge(Answer, BuildResult)
	_ = g.AddEdge(BuildResult, compose.END)
	return g.Compile(ctx, compose.WithGraphName("QueryRoutedChatPipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// validateNode 节点 1：校验请求参数
func (p *ChatPipeline) validateNode(ctx context.Context, req *ChatRequest, _ ...any) (*chatState, error) {
	_ = ctx
	st := &chatState{Req: req, Start: time.Now()}
	if req == nil {
		st.Err = fmt.Errorf("chat request is nil")
		return st, nil
	}
	question := strings.TrimSpace(req.Question)
	req.Question = question
	if question == "" {
		st.Err = fmt.Errorf("missing question")
		return st, nil
	}
	return st, nil
}

// rewriteNode 节点 2：追问改写。
// 历史为空时原样透传且不调用模型；改写结果带 "Standalone Question:" 标签时剥掉。
func (p *ChatPipeline) rewriteNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	if len(st.Req.History) == 0 {
		st.SearchQuery = st.Req.Question
		return st, nil
	}

	rwStart := time.Now()
	history := chatbot.TrimHistory(st.Req.History, p.historyTurns)
	prompt := chatbot.BuildRewritePrompt(history, st.Req.Question)
	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		st.Err = chatbot.NewProviderError("rewrite", err)
		return st, nil
	}
	rewritten := chatbot.StripRewriteLabel(raw)
	if rewritten == "" {
		// 模型返回空串时退回原始问题，不中断整条链路
		rewritten = st.Req.Question
	}
	st.SearchQuery = rewritten
	st.RewriteMs = time.Since(rwStart).Milliseconds()
	return st, nil
}

// classifyNode 节点 3：问题分类。
// 模型输出做纯子串解析，任何意外输出都落到 irrelevant。
func (p *ChatPipeline) classifyNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	clsStart := time.Now()
	raw, err := p.completer.Complete(ctx, chatbot.BuildClassifyPrompt(st.SearchQuery))
	if err != nil {
		st.Err = chatbot.NewProviderError("classify", err)
		return st, nil
	}
	st.Class = chatbot.ParseClassification(raw)
	st.ClassifyMs = time.Since(clsStart).Milliseconds()
	return st, nil
}

// answerNode 节点 4：按分类路由作答
func (p *ChatPipeline) answerNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	ansStart := time.Now()
	switch st.Class {
	case chatbot.ClassDatabase:
		p.answerDatabase(ctx, st)
	case chatbot.ClassKnowledge:
		p.answerKnowledge(ctx, st)
	case chatbot.ClassConversational:
		// 寒暄走固定话术，不调用模型
		st.Answer = chatbot.AnswerGreeting
	default:
		st.Answer = chatbot.AnswerIrrelevant
	}
	st.AnswerMs = time.Since(ansStart).Milliseconds()
	return st, nil
}

// answerDatabase database 路径：NL2SQL → 安全门禁 → 只读执行 → 结果格式化。
// 未过门禁的 SQL 绝不触库，直接返回固定话术。
func (p *ChatPipeline) answerDatabase(ctx context.Context, st *chatState) {
	raw, err := p.completer.Complete(ctx, sqlgen.BuildPrompt(st.SearchQuery))
	if err != nil {
		st.Err = chatbot.NewProviderError("sqlgen", err)
		return
	}
	query := sqlgen.ExtractSQL(raw)
	if query == "" {
		st.Err = chatbot.NewProviderError("sqlgen", fmt.Errorf("empty sql from model"))
		return
	}

	if err := sqlgen.CheckSafety(query); err != nil {
		var unsafeErr *chatbot.UnsafeQueryError
		if errors.As(err, &unsafeErr) {
			zlog.Warn("拦截不安全 SQL",
				zap.String("question", st.SearchQuery),
				zap.String("sql", query),
				zap.String("keyword", unsafeErr.Keyword),
			)
			st.Answer = chatbot.AnswerUnsafeQuery
			return
		}
		st.Err = err
		return
	}
	st.SQL = query

	result, err := p.store.ExecuteReadOnly(ctx, query)
	if err != nil {
		// 生成的 SQL 执行失败不视为系统错误，按原样回报给用户
		cause := err
		var execErr *chatbot.ExecutionError
		if errors.As(err, &execErr) {
			cause = execErr.Err
		}
		st.Answer = fmt.Sprintf("Error executing generated SQL: %v", cause)
		return
	}
	st.Answer = sqlgen.FormatResult(result)

	// 多行结果可选转述：失败时保留表格文本
	if p.narrateRows && result != nil && len(result.Rows) > 1 {
		narrated, nerr := p.completer.Complete(ctx, sqlgen.BuildNarratePrompt(st.SearchQuery, st.Answer))
		if nerr == nil && strings.TrimSpace(narrated) != "" {
			st.Answer = strings.TrimSpace(narrated)
		}
	}
}

// answerKnowledge knowledge 路径：混合召回 → 拼上下文 → 模型生成。
// 零召回时直接返回固定话术；生成失败时兜底罗列片段。
func (p *ChatPipeline) answerKnowledge(ctx context.Context, st *chatState) {
	res, err := p.retriever.Retrieve(ctx, &RetrieveRequest{Question: st.SearchQuery, TopK: p.topK})
	if err != nil {
		st.Err = err
		return
	}
	if res == nil || len(res.Results) == 0 {
		st.Answer = chatbot.AnswerNoKnowledge
		return
	}
	st.Sources = len(res.Results)

	answer, err := p.completer.Complete(ctx, chatbot.BuildKnowledgePrompt(res.Results, st.SearchQuery))
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			zlog.Warn("知识问答生成失败，使用兜底渲染", zap.Error(err))
		}
		st.Answer = chatbot.RenderKnowledgeFallback(res.Results)
		return
	}
	st.Answer = strings.TrimSpace(answer)
}

// buildResultNode 节点 5：组装最终响应结构
func (p *ChatPipeline) buildResultNode(ctx context.Context, st *chatState, _ ...any) (*ChatResult, error) {
	_ = ctx
	if st == nil {
		return nil, fmt.Errorf("nil state")
	}
	res := &ChatResult{}
	if st.Req != nil {
		res.Question = st.Req.Question
	}
	res.QueryID = fmt.Sprintf("c_%s_%d", util.GenerateID("C"), time.Now().UnixNano())
	res.SearchQuery = st.SearchQuery
	res.Classification = st.Class
	res.Answer = st.Answer
	res.SQL = st.SQL
	res.Sources = st.Sources
	res.RewriteMs = st.RewriteMs
	res.ClassifyMs = st.ClassifyMs
	res.AnswerMs = st.AnswerMs
	res.DurationMs = time.Since(st.Start).Milliseconds()

	zlog.Info(
		"qa chat done",
		zap.String("query_id", res.QueryID),
		zap.String("question", res.Question),
		zap.String("search_query", res.SearchQuery),
		zap.String("classification", string(res.Classification)),
		zap.String("sql", res.SQL),
		zap.Int("sources", res.Sources),
		zap.Int64("rewrite_ms", res.RewriteMs),
		zap.Int64("classify_ms", res.ClassifyMs),
		zap.Int64("answer_ms", res.AnswerMs),
		zap.Int64("duration_ms", res.DurationMs),
		zap.Bool("failed", st.Err != nil),
	)
	return res, st.Err
}
