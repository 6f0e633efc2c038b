package respond

import "DataLink/internal/modules/qa/domain/chatbot"

type ChatSummaryRespond struct {
	Uuid      string `json:"uuid"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

type ChatDetailRespond struct {
	Uuid      string             `json:"uuid"`
	Title     string             `json:"title"`
	Messages  []chatbot.ChatTurn `json:"messages"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type SaveChatRespond struct {
	Uuid string `json:"uuid"`
}
