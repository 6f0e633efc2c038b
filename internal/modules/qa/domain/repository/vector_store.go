package repository

import "context"

// VectorStore 是 domain 层定义的"向量库能力抽象"。
//
// 设计约束：
// 1) application / pipeline 只依赖本接口，不直接依赖 Milvus SDK。
// 2) infrastructure 通过适配器实现本接口（MilvusVectorStore），底层可替换。

// VectorUpsertItem 向量写入所需的标准字段
type VectorUpsertItem struct {
	ID           string
	Vector       []float32
	Source       string
	ChunkID      int64
	Content      string
	MetadataJSON string
}

// VectorSearchHit 向量检索命中。Score 为 COSINE 相似度，越高越相关。
type VectorSearchHit struct {
	ID           string
	Score        float32
	ChunkID      int64
	Source       string
	Content      string
	MetadataJSON string
}

// VectorStore 向量数据库接口（Upsert/Delete/Search）
type VectorStore interface {
	Upsert(ctx context.Context, items []VectorUpsertItem) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	Search(ctx context.Context, vector []float32, topK int) ([]VectorSearchHit, error)
}
