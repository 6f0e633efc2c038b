package request

import "DataLink/internal/modules/qa/domain/chatbot"

// ChatRequest 问答请求
type ChatRequest struct {
	Question    string             `json:"question" binding:"required"` // 用户问题（必填）
	ChatHistory []chatbot.ChatTurn `json:"chat_history"`                // 对话历史（可为空；为空时跳过改写）
}

// IngestDocumentRequest 文档摄取请求（同步与异步共用）
type IngestDocumentRequest struct {
	Source  string `json:"source" binding:"required"`  // 文档来源标识（同 source 整体替换）
	Content string `json:"content" binding:"required"` // 文档原始文本
}

// NarrateDatasetRequest 数据集口述化摄取请求
type NarrateDatasetRequest struct {
	// Source 入库来源标识，默认 "titanic"
	Source string `json:"source"`
}

// RetrieveRequest 混合召回调试请求（管理端）
type RetrieveRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"` // 默认 5，范围 1-50
}
