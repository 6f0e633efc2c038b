package persistence

import (
	"context"
	"time"

	"DataLink/internal/modules/qa/domain/knowledge"
	"DataLink/internal/modules/qa/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ingestEventRepositoryImpl struct {
	db *gorm.DB
}

func NewIngestEventRepository(db *gorm.DB) repository.IngestEventRepository {
	return &ingestEventRepositoryImpl{db: db}
}

// InsertIfAbsent 按 dedup_key 幂等插入，冲突时什么都不做并返回 false。
func (r *ingestEventRepositoryImpl) InsertIfAbsent(ctx context.Context, event *knowledge.IngestEvent) (bool, error) {
	if event == nil {
		return false, nil
	}
	now := time.Now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ingestEventRepositoryImpl) UpdateStatus(ctx context.Context, dedupKey string, status int8) error {
	return r.db.WithContext(ctx).
		Model(&knowledge.IngestEvent{}).
		Where("dedup_key = ?", dedupKey).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}
