package chatbot

import "strings"

// ChatTurn 一轮对话（调用方传入，核心只读，用作改写上下文）
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DefaultHistoryTurns 改写时携带的最近对话轮数
const DefaultHistoryTurns = 4

// TrimHistory 取最近 n 轮对话
func TrimHistory(history []ChatTurn, n int) []ChatTurn {
	if n <= 0 {
		n = DefaultHistoryTurns
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// StripRewriteLabel 去掉模型改写结果里可能带的前导标签（如 "Standalone Question:"）
func StripRewriteLabel(rewritten string) string {
	s := strings.TrimSpace(rewritten)
	const label = "Standalone Question:"
	if idx := strings.LastIndex(s, label); idx >= 0 {
		s = s[idx+len(label):]
	}
	return strings.TrimSpace(s)
}
