package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	https_server "DataLink/api/http"
	"DataLink/internal/config"
	"DataLink/internal/modules/qa/infrastructure/mq/kafka"
	"DataLink/pkg/redis"
	"DataLink/pkg/zlog"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 准备摄取主题并启动消费 worker
	if len(conf.KafkaConfig.Brokers) > 0 {
		partitions := conf.KafkaConfig.Partitions
		if partitions <= 0 {
			partitions = 3
		}
		replication := conf.KafkaConfig.Replication
		if replication <= 0 {
			replication = 1
		}
		err := kafka.EnsureTopic(kafka.TopicAdminConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			ClientID: conf.KafkaConfig.ClientID,
		}, conf.KafkaConfig.IngestTopic, partitions, replication)
		if err != nil {
			zlog.Warn("摄取主题创建失败: " + err.Error())
		}
	}
	if https_server.IngestWorker != nil {
		go func() {
			if err := https_server.IngestWorker.Run(ctx); err != nil {
				zlog.Error("摄取 worker 退出: " + err.Error())
			}
		}()
	}

	// 3. 启动 HTTP 服务
	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		zlog.Info(fmt.Sprintf("服务器正在启动，监听地址: %s", addr))
		// 目前使用 HTTP 启动。如果需要 HTTPS，请配置证书并使用 GE.RunTLS
		if err := https_server.GE.Run(addr); err != nil {
			zlog.Fatal("服务器启动失败: " + err.Error())
			return
		}
	}()

	// 4. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务器...")
	cancel()
	if https_server.IngestWorker != nil {
		if err := https_server.IngestWorker.Close(); err != nil {
			zlog.Warn("关闭摄取 worker 失败: " + err.Error())
		}
	}
	if https_server.Publisher != nil {
		if err := https_server.Publisher.Close(); err != nil {
			zlog.Warn("关闭 kafka producer 失败: " + err.Error())
		}
	}
	if err := redis.Close(); err != nil {
		zlog.Warn("关闭 redis 失败: " + err.Error())
	}
	zlog.Info("服务器已关闭")
}
