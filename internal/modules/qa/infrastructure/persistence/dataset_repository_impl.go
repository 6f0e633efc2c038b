package persistence

import (
	"context"

	"DataLink/internal/modules/qa/domain/dataset"
	"DataLink/internal/modules/qa/domain/repository"

	"gorm.io/gorm"
)

type datasetRepositoryImpl struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) repository.DatasetRepository {
	return &datasetRepositoryImpl{db: db}
}

func (r *datasetRepositoryImpl) ListPassengers(ctx context.Context, limit int) ([]dataset.TitanicPassenger, error) {
	var passengers []dataset.TitanicPassenger
	q := r.db.WithContext(ctx).Order("passenger_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&passengers).Error; err != nil {
		return nil, err
	}
	return passengers, nil
}

func (r *datasetRepositoryImpl) CountPassengers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dataset.TitanicPassenger{}).Count(&count).Error
	return count, err
}
