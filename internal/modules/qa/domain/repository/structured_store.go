package repository

import "context"

// SQLResult 只读查询结果
type SQLResult struct {
	Columns []string
	Rows    [][]any
}

// StructuredStore 固定 schema 结构化数据集的只读查询面。
// 调用方必须先过安全门禁（写操作关键词黑名单）再调用 ExecuteReadOnly。
type StructuredStore interface {
	ExecuteReadOnly(ctx context.Context, sql string) (*SQLResult, error)
}
