package http

import (
	"DataLink/internal/modules/qa/application/service"
	"DataLink/pkg/back"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端统计 HTTP Handler
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建管理端 Handler
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Stats 知识库与数据集概况
//
// 路由: GET /qa/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	data, err := h.adminSvc.Stats(c.Request.Context())
	back.Result(c, data, err)
}
