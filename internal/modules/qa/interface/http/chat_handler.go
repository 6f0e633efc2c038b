package http

import (
	qaRequest "DataLink/internal/modules/qa/application/dto/request"
	"DataLink/internal/modules/qa/application/service"
	"DataLink/pkg/back"
	"DataLink/pkg/xerr"
	"DataLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler 查询路由问答 HTTP Handler
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建问答 Handler
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// Chat 处理一次问答请求
//
// 路由: POST /qa/chat
// 鉴权: 需要 JWT（从 authed 分组继承）
// 请求体: ChatRequest
// 响应体: ChatRespond
func (h *ChatHandler) Chat(c *gin.Context) {
	var req qaRequest.ChatRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.chatSvc.Chat(c.Request.Context(), req)
	if err != nil {
		zlog.Error("qa chat failed", zap.String("question", req.Question), zap.Error(err))
	}
	back.Result(c, data, err)
}

// Retrieve 混合召回调试入口（不走生成）
//
// 路由: POST /qa/retrieve
func (h *ChatHandler) Retrieve(c *gin.Context) {
	var req qaRequest.RetrieveRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.chatSvc.Retrieve(c.Request.Context(), req)
	back.Result(c, data, err)
}
