package pipeline

import (
	"context"
	"fmt"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/domain/repository"
	"DataLink/internal/modules/qa/infrastructure/llm"

	"github.com/cloudwego/eino/compose"
)

// ChatRequest 问答 Pipeline 的输入请求
type ChatRequest struct {
	Question string             // 用户问题（必填）
	History  []chatbot.ChatTurn // 对话历史（可为空；为空时跳过改写）
}

// ChatResult 问答 Pipeline 的输出结果
type ChatResult struct {
	QueryID        string                 `json:"query_id"`
	Question       string                 `json:"question"`
	SearchQuery    string                 `json:"search_query"`   // 改写后的独立问题
	Classification chatbot.Classification `json:"classification"` // 路由结果
	Answer         string                 `json:"answer"`
	SQL            string                 `json:"sql,omitempty"`     // database 路径生成的 SQL（未过门禁时为空）
	Sources        int                    `json:"sources"`           // knowledge 路径引用的片段数
	RewriteMs      int64                  `json:"rewrite_ms"`
	ClassifyMs     int64                  `json:"classify_ms"`
	AnswerMs       int64                  `json:"answer_ms"`
	DurationMs     int64                  `json:"duration_ms"`
}

// ChatPipeline 查询路由问答 Pipeline（基于 Eino compose.Graph）。
//
// 节点顺序：Validate → Rewrite → Classify → Answer → BuildResult
//  1. Rewrite：有历史时用模型把追问改写为独立问题；无历史时原样透传、零模型调用
//  2. Classify：模型输出做纯子串解析，优先级 database > knowledge > conversational > irrelevant
//  3. Answer：按路由走 NL2SQL / 混合召回 RAG / 固定寒暄 / 固定重定向
type ChatPipeline struct {
	completer *llm.Completer
	retriever *RetrievePipeline
	store     repository.StructuredStore

	topK         int
	historyTurns int
	narrateRows  bool
	r            compose.Runnable[*ChatRequest, *ChatResult]
}

func NewChatPipeline(
	completer *llm.Completer,
	retriever *RetrievePipeline,
	store repository.StructuredStore,
	topK int,
	historyTurns int,
	narrateRows bool,
) (*ChatPipeline, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is nil")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retrieve pipeline is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("structured store is nil")
	}
	if topK <= 0 {
		topK = 5
	}
	if historyTurns <= 0 {
		historyTurns = chatbot.DefaultHistoryTurns
	}
	p := &ChatPipeline{
		completer:    completer,
		retriever:    retriever,
		store:        store,
		topK:         topK,
		historyTurns: historyTurns,
		narrateRows:  narrateRows,
	}
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

// Chat 执行一次问答（封装 Eino Runnable.Invoke）
func (p *ChatPipeline) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request is nil")
	}
	if p.r == nil {
		return nil, fmt.Errorf("pipeline runnable is nil")
	}
	return p.r.Invoke(ctx, req)
}
