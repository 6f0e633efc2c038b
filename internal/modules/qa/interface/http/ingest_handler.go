package http

import (
	qaRequest "DataLink/internal/modules/qa/application/dto/request"
	"DataLink/internal/modules/qa/application/service"
	"DataLink/pkg/back"
	"DataLink/pkg/xerr"
	"DataLink/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// IngestHandler 文档摄取 HTTP Handler。
// /qa/ingest/document 走 Kafka 异步，/qa/ingest/sync 同步落库（小文档、调试用）。
type IngestHandler struct {
	ingestSvc service.IngestService
	asyncSvc  service.AsyncIngestService
}

// NewIngestHandler 创建摄取 Handler
func NewIngestHandler(ingestSvc service.IngestService, asyncSvc service.AsyncIngestService) *IngestHandler {
	return &IngestHandler{ingestSvc: ingestSvc, asyncSvc: asyncSvc}
}

// IngestDocument 异步摄取一篇文档（事件入队即返回）
//
// 路由: POST /qa/ingest/document
func (h *IngestHandler) IngestDocument(c *gin.Context) {
	var req qaRequest.IngestDocumentRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.asyncSvc.PublishDocument(c.Request.Context(), req)
	back.Result(c, data, err)
}

// IngestSync 同步摄取一篇文档（返回即已入库）
//
// 路由: POST /qa/ingest/sync
func (h *IngestHandler) IngestSync(c *gin.Context) {
	var req qaRequest.IngestDocumentRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.ingestSvc.IngestDocument(c.Request.Context(), req)
	back.Result(c, data, err)
}

// NarrateDataset 把数据集口述化后异步摄取
//
// 路由: POST /qa/ingest/narrate
func (h *IngestHandler) NarrateDataset(c *gin.Context) {
	var req qaRequest.NarrateDatasetRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.asyncSvc.PublishNarrateDataset(c.Request.Context(), req)
	back.Result(c, data, err)
}
