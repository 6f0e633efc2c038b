package repository

import (
	"context"

	"DataLink/internal/modules/qa/domain/dataset"
)

// DatasetRepository 数据集行级读取（口述化摄取用，区别于 StructuredStore 的自由查询面）
type DatasetRepository interface {
	ListPassengers(ctx context.Context, limit int) ([]dataset.TitanicPassenger, error)
	CountPassengers(ctx context.Context) (int64, error)
}
