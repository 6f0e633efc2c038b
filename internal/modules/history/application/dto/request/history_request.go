package request

import "DataLink/internal/modules/qa/domain/chatbot"

type SaveChatRequest struct {
	Uuid     string             `json:"uuid"`
	Title    string             `json:"title"`
	Messages []chatbot.ChatTurn `json:"messages" binding:"required"`
}

type DeleteChatRequest struct {
	Uuid string `json:"uuid" binding:"required"`
}
