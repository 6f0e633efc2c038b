package persistence

import (
	"context"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/domain/repository"

	"gorm.io/gorm"
)

type titanicStoreImpl struct {
	db *gorm.DB
}

func NewTitanicStore(db *gorm.DB) repository.StructuredStore {
	return &titanicStoreImpl{db: db}
}

// ExecuteReadOnly 执行只读查询并把结果集整体读入内存。
// SQL 必须先经过 sqlgen.CheckSafety 门禁，这里不再做二次校验。
func (s *titanicStoreImpl) ExecuteReadOnly(ctx context.Context, query string) (*repository.SQLResult, error) {
	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		// 语法错误、未知列等都归为执行错误，错误文本原样透出
		return nil, &chatbot.ExecutionError{Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &repository.SQLResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		scanArgs := make([]any, len(cols))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &chatbot.ExecutionError{Err: err}
	}
	return result, nil
}
