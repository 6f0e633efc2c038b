package handler

import (
	"github.com/gin-gonic/gin"

	"DataLink/internal/modules/history/application/dto/request"
	"DataLink/internal/modules/history/application/service"
	"DataLink/pkg/back"
	"DataLink/pkg/xerr"
)

type HistoryHandler struct {
	historyService service.HistoryService
}

func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// SaveChat 保存或覆盖一段对话
// @Router /history/save [post]
func (h *HistoryHandler) SaveChat(c *gin.Context) {
	var req request.SaveChatRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.historyService.SaveChat(c.Request.Context(), c.GetString("uuid"), &req)
	back.Result(c, data, err)
}

// ListChats 当前用户的对话列表
// @Router /history/list [get]
func (h *HistoryHandler) ListChats(c *gin.Context) {
	data, err := h.historyService.ListChats(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, data, err)
}

// GetChat 单段对话详情
// @Router /history/detail/:uuid [get]
func (h *HistoryHandler) GetChat(c *gin.Context) {
	uuid := c.Param("uuid")
	if uuid == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.historyService.GetChat(c.Request.Context(), c.GetString("uuid"), uuid)
	back.Result(c, data, err)
}

// DeleteChat 删除一段对话
// @Router /history/delete [post]
func (h *HistoryHandler) DeleteChat(c *gin.Context) {
	var req request.DeleteChatRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	err := h.historyService.DeleteChat(c.Request.Context(), c.GetString("uuid"), req.Uuid)
	back.Result(c, nil, err)
}
