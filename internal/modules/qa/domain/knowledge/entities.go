package knowledge

import "time"

// DocumentChunk 知识库切片。内容与元数据落 MySQL（FULLTEXT 关键词检索），
// 向量落 Milvus，VectorId 关联两边，按 source 整体替换（重新摄取时先清理）。
type DocumentChunk struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Source       string    `gorm:"column:source;type:varchar(64);not null;index:idx_qa_chunk_source"`
	ChunkIndex   int       `gorm:"column:chunk_index;type:int;not null"`
	Content      string    `gorm:"column:content;type:text;not null;index:idx_qa_chunk_content,class:FULLTEXT"`
	ContentHash  string    `gorm:"column:content_hash;type:char(64);not null;index:idx_qa_chunk_hash"`
	MetadataJson string    `gorm:"column:metadata_json;type:json"`
	VectorId     string    `gorm:"column:vector_id;type:varchar(128);not null;uniqueIndex:uniq_qa_chunk_vector"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (DocumentChunk) TableName() string { return "qa_document_chunk" }

// IngestEvent 异步摄取事件（Kafka 消费侧按 dedup_key 幂等）
type IngestEvent struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Source      string    `gorm:"column:source;type:varchar(64);not null;index:idx_qa_event_source"`
	PayloadJson string    `gorm:"column:payload_json;type:json"`
	DedupKey    string    `gorm:"column:dedup_key;type:varchar(160);not null;uniqueIndex:uniq_qa_event_dedup"`
	Status      int8      `gorm:"column:status;type:tinyint;not null;default:0;index:idx_qa_event_status"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (IngestEvent) TableName() string { return "qa_ingest_event" }

// IngestEvent 状态
const (
	EventStatusPending int8 = 0
	EventStatusDone    int8 = 1
	EventStatusFailed  int8 = 2
)
