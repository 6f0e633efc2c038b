package websocket

import (
	"net/http"
	"strings"

	"DataLink/internal/modules/qa/application/dto/request"
	"DataLink/internal/modules/qa/application/service"
	"DataLink/pkg/util/myjwt"
	"DataLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 生产环境需要严格校验 Origin
		return true
	},
}

// ChatWSHandler 问答 WebSocket Handler。
// 一条连接可以连续问答，连接内由客户端自带对话历史。
type ChatWSHandler struct {
	chatSvc service.ChatService
}

// NewChatWSHandler 创建问答 WebSocket Handler
func NewChatWSHandler(chatSvc service.ChatService) *ChatWSHandler {
	return &ChatWSHandler{chatSvc: chatSvc}
}

// Chat 问答 WebSocket 接口
//
// WebSocket URL: ws://host/qa/chat/ws?token=<JWT>
//
// 客户端发送：{"action": "chat", "data": {"question": "...", "chat_history": [...]}}
// 服务端响应：{"event": "answer", "data": ChatRespond} 或 {"event": "error", "error": "..."}
func (h *ChatWSHandler) Chat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// 认证：中间件设置的 uuid 优先，其次 query token
	userUuid := strings.TrimSpace(c.GetString("uuid"))
	if userUuid == "" {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			_ = conn.WriteJSON(map[string]string{"event": "error", "error": "missing token"})
			return
		}
		claims, err := myjwt.ParseToken(token)
		if err != nil {
			_ = conn.WriteJSON(map[string]string{"event": "error", "error": "invalid token"})
			return
		}
		userUuid = claims.Uuid
	}

	zlog.Info("qa websocket connected",
		zap.String("uuid", userUuid),
		zap.String("remote_addr", c.Request.RemoteAddr))

	for {
		var wsMsg struct {
			Action string              `json:"action"`
			Data   request.ChatRequest `json:"data"`
		}
		if err := conn.ReadJSON(&wsMsg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zlog.Warn("qa websocket read error", zap.Error(err), zap.String("uuid", userUuid))
			}
			break
		}

		if wsMsg.Action != "chat" {
			_ = conn.WriteJSON(map[string]string{"event": "error", "error": "unsupported action: " + wsMsg.Action})
			continue
		}

		data, err := h.chatSvc.Chat(c.Request.Context(), wsMsg.Data)
		if err != nil {
			zlog.Error("qa websocket chat failed", zap.Error(err), zap.String("uuid", userUuid))
			_ = conn.WriteJSON(map[string]string{"event": "error", "error": err.Error()})
			continue
		}
		if err := conn.WriteJSON(map[string]any{"event": "answer", "data": data}); err != nil {
			zlog.Warn("qa websocket write failed", zap.Error(err), zap.String("uuid", userUuid))
			break
		}
	}

	zlog.Info("qa websocket disconnected", zap.String("uuid", userUuid))
}
