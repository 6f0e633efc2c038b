package constants

// 通用提示文案
const (
	SYSTEM_ERROR = "系统错误，请稍后再试"
)
