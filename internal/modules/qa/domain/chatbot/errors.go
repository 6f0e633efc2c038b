package chatbot

import (
	"fmt"
)

// ProviderError 模型/向量化服务调用失败（传输错误、模型错误等）。
// 按请求粒度可恢复：只影响当前请求，核心不做自动重试。
type ProviderError struct {
	Stage string // rewrite / classify / embed / generate / narrate
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error at %s: %v", e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(stage string, err error) *ProviderError {
	return &ProviderError{Stage: stage, Err: err}
}

// UnsafeQueryError 生成的 SQL 命中写操作关键词黑名单，永远不会被执行
type UnsafeQueryError struct {
	Keyword string
}

func (e *UnsafeQueryError) Error() string {
	return fmt.Sprintf("unsafe sql keyword detected: %s", e.Keyword)
}

// ExecutionError 结构化存储拒绝了生成的 SQL（语法错误、未知列等）。
// 错误文本原样透出给用户，便于排查 schema/prompt 问题，不重试不纠错。
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sql execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
