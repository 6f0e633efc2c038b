package service

import (
	"context"
	"fmt"
	"strings"

	"DataLink/internal/modules/qa/application/dto/request"
	"DataLink/internal/modules/qa/application/dto/respond"
	"DataLink/internal/modules/qa/infrastructure/pipeline"
)

// ChatService 查询路由问答服务接口
type ChatService interface {
	// Chat 执行一次问答：改写 → 分类 → 按路由作答
	Chat(ctx context.Context, req request.ChatRequest) (*respond.ChatRespond, error)
	// Retrieve 混合召回调试入口（不走生成）
	Retrieve(ctx context.Context, req request.RetrieveRequest) (*respond.RetrieveRespond, error)
}

type chatServiceImpl struct {
	chat     *pipeline.ChatPipeline
	retrieve *pipeline.RetrievePipeline
}

// NewChatService 创建问答服务
func NewChatService(chat *pipeline.ChatPipeline, retrieve *pipeline.RetrievePipeline) ChatService {
	return &chatServiceImpl{chat: chat, retrieve: retrieve}
}

func (s *chatServiceImpl) Chat(ctx context.Context, req request.ChatRequest) (*respond.ChatRespond, error) {
	if s.chat == nil {
		return nil, fmt.Errorf("chat pipeline is nil")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	result, err := s.chat.Chat(ctx, &pipeline.ChatRequest{
		Question: question,
		History:  req.ChatHistory,
	})
	if err != nil {
		return nil, err
	}

	return &respond.ChatRespond{
		QueryID:        result.QueryID,
		Question:       result.Question,
		SearchQuery:    result.SearchQuery,
		Classification: string(result.Classification),
		Answer:         result.Answer,
		SQL:            result.SQL,
		Sources:        result.Sources,
		DurationMs:     result.DurationMs,
	}, nil
}

func (s *chatServiceImpl) Retrieve(ctx context.Context, req request.RetrieveRequest) (*respond.RetrieveRespond, error) {
	if s.retrieve == nil {
		return nil, fmt.Errorf("retrieve pipeline is nil")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	result, err := s.retrieve.Retrieve(ctx, &pipeline.RetrieveRequest{
		Question: question,
		TopK:     req.TopK,
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]respond.RetrievedChunk, 0, len(result.Results))
	for _, r := range result.Results {
		chunks = append(chunks, respond.RetrievedChunk{
			Content:  r.Content,
			Metadata: r.MetadataJSON,
			Distance: r.Distance,
		})
	}
	return &respond.RetrieveRespond{
		QueryID:       result.QueryID,
		Question:      result.Question,
		Chunks:        chunks,
		VectorHits:    result.VectorHits,
		KeywordHits:   result.KeywordHits,
		ReturnedCount: result.ReturnedCount,
		DurationMs:    result.DurationMs,
		IsEmpty:       result.IsEmpty,
	}, nil
}
