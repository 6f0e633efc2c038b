package initial

import (
	"DataLink/internal/config"
	"DataLink/pkg/zlog"
)

// 本文件按文件名排在包内最前，保证日志先于其余初始化就绪
func init() {
	zlog.Init(config.GetConfig().LogConfig.LogPath)
}
