package vectordb

import (
	"context"
	"fmt"

	"DataLink/internal/modules/qa/domain/repository"
)

// MilvusVectorStore 实现 domain 层 repository.VectorStore，把 domain 类型映射到 MilvusStore。
// pipeline 只依赖 repository.VectorStore，底层可替换。
type MilvusVectorStore struct {
	store *MilvusStore
}

var _ repository.VectorStore = (*MilvusVectorStore)(nil)

func NewMilvusVectorStore(store *MilvusStore) (*MilvusVectorStore, error) {
	if store == nil {
		return nil, fmt.Errorf("milvus store is nil")
	}
	return &MilvusVectorStore{store: store}, nil
}

func (s *MilvusVectorStore) Upsert(ctx context.Context, items []repository.VectorUpsertItem) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	upserts := make([]UpsertItem, 0, len(items))
	for _, it := range items {
		upserts = append(upserts, UpsertItem{
			ID:           it.ID,
			Vector:       it.Vector,
			Source:       it.Source,
			ChunkID:      it.ChunkID,
			Content:      it.Content,
			MetadataJSON: it.MetadataJSON,
		})
	}
	return s.store.Upsert(ctx, upserts)
}

func (s *MilvusVectorStore) DeleteByIDs(ctx context.Context, ids []string) error {
	return s.store.DeleteByIDs(ctx, ids)
}

func (s *MilvusVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]repository.VectorSearchHit, error) {
	hits, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}
	out := make([]repository.VectorSearchHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, repository.VectorSearchHit{
			ID:           h.ID,
			Score:        h.Score,
			ChunkID:      h.ChunkID,
			Source:       h.Source,
			Content:      h.Content,
			MetadataJSON: h.MetadataJSON,
		})
	}
	return out, nil
}
