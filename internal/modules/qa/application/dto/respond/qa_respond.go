package respond

// ChatRespond 问答响应
type ChatRespond struct {
	QueryID        string `json:"query_id"`       // 本次问答唯一 ID（便于追踪回放）
	Question       string `json:"question"`       // 原始用户问题
	SearchQuery    string `json:"search_query"`   // 改写后的独立问题
	Classification string `json:"classification"` // 路由结果（database/knowledge/conversational/irrelevant）
	Answer         string `json:"answer"`
	SQL            string `json:"sql,omitempty"` // database 路径生成的 SQL（便于调试）
	Sources        int    `json:"sources"`       // knowledge 路径引用的片段数
	DurationMs     int64  `json:"duration_ms"`
}

// RetrievedChunk 混合召回的单条结果
type RetrievedChunk struct {
	Content  string  `json:"content"`
	Metadata string  `json:"metadata"`
	Distance float64 `json:"distance"` // 越小越相关，关键词命中恒为 0.0
}

// RetrieveRespond 混合召回调试响应
type RetrieveRespond struct {
	QueryID       string           `json:"query_id"`
	Question      string           `json:"question"`
	Chunks        []RetrievedChunk `json:"chunks"` // 按 distance 升序
	VectorHits    int              `json:"vector_hits"`
	KeywordHits   int              `json:"keyword_hits"`
	ReturnedCount int              `json:"returned_count"`
	DurationMs    int64            `json:"duration_ms"`
	IsEmpty       bool             `json:"is_empty"`
}

// IngestRespond 同步摄取响应
type IngestRespond struct {
	Source     string `json:"source"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
	VectorsOK  int    `json:"vectors_ok"`
	PurgedOld  int    `json:"purged_old"`
	DurationMs int64  `json:"duration_ms"`
}

// AsyncIngestRespond 异步摄取响应（仅代表事件已入队）
type AsyncIngestRespond struct {
	Source    string `json:"source"`
	DedupKey  string `json:"dedup_key"`
	Partition int32  `json:"partition"`
	Offset    int64  `json:"offset"`
}

// StatsRespond 知识库概况（管理端统计）
type StatsRespond struct {
	ChunkCount     int64 `json:"chunk_count"`
	SourceCount    int64 `json:"source_count"`
	PassengerCount int64 `json:"passenger_count"`
}
