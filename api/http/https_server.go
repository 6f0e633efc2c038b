package http

import (
	"context"
	"fmt"
	"time"

	"DataLink/internal/config"
	"DataLink/internal/initial"
	jwtMiddleware "DataLink/internal/middleware/jwt"
	historyService "DataLink/internal/modules/history/application/service"
	historyPersistence "DataLink/internal/modules/history/infrastructure/persistence"
	historyHandler "DataLink/internal/modules/history/interface/http"
	qaService "DataLink/internal/modules/qa/application/service"
	"DataLink/internal/modules/qa/infrastructure/chunking"
	"DataLink/internal/modules/qa/infrastructure/embedding"
	"DataLink/internal/modules/qa/infrastructure/llm"
	"DataLink/internal/modules/qa/infrastructure/mq"
	"DataLink/internal/modules/qa/infrastructure/mq/kafka"
	qaPersistence "DataLink/internal/modules/qa/infrastructure/persistence"
	"DataLink/internal/modules/qa/infrastructure/pipeline"
	"DataLink/internal/modules/qa/infrastructure/queue"
	"DataLink/internal/modules/qa/infrastructure/vectordb"
	qaHandler "DataLink/internal/modules/qa/interface/http"
	qaWebsocket "DataLink/internal/modules/qa/interface/websocket"
	"DataLink/internal/modules/user/application/service"
	"DataLink/internal/modules/user/infrastructure/persistence"
	userHandler "DataLink/internal/modules/user/interface/http"
	"DataLink/pkg/redis"
	"DataLink/pkg/ssl"
	"DataLink/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var GE *gin.Engine

// Publisher 摄取事件生产者，main 在退出时负责 Close。Kafka 未配置时为 nil。
var Publisher mq.Publisher

// IngestWorker 摄取事件消费 worker，main 启动时在后台运行。Kafka 未配置时为 nil。
var IngestWorker *queue.IngestConsumerWorker

func init() {
	conf := config.GetConfig()

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	ctx := context.Background()

	// ---- 存储层 ----
	if initial.MilvusClient == nil {
		zlog.Fatal("milvus 未配置，无法提供知识检索能力，请检查 milvusConfig.address")
		return
	}
	collection := conf.MilvusConfig.CollectionName
	if collection == "" {
		collection = "qa_knowledge_vectors"
	}
	vectorDim := conf.MilvusConfig.VectorDim
	if vectorDim <= 0 {
		vectorDim = 768
	}
	metricType := entity.COSINE
	if conf.MilvusConfig.MetricType == "IP" {
		metricType = entity.IP
	}
	milvusStore, err := vectordb.NewMilvusStore(initial.MilvusClient, collection, "vector", vectorDim, metricType)
	if err != nil {
		zlog.Fatal("milvus store 初始化失败: " + err.Error())
		return
	}
	vectorStore, err := vectordb.NewMilvusVectorStore(milvusStore)
	if err != nil {
		zlog.Fatal("vector store 初始化失败: " + err.Error())
		return
	}

	chunkRepo := qaPersistence.NewChunkRepository(initial.GormDB)
	eventRepo := qaPersistence.NewIngestEventRepository(initial.GormDB)
	datasetRepo := qaPersistence.NewDatasetRepository(initial.GormDB)
	titanicStore := qaPersistence.NewTitanicStore(initial.GormDB)
	userRepo := persistence.NewUserInfoRepository(initial.GormDB)
	userChatRepo := historyPersistence.NewUserChatRepository(initial.GormDB)

	// ---- 模型层 ----
	embedder, embedderMeta, err := embedding.NewEmbedderFromConfig(ctx, conf)
	if err != nil {
		zlog.Fatal("embedding 初始化失败: " + err.Error())
		return
	}
	if redis.IsConnected() {
		ttl := time.Duration(conf.RedisConfig.EmbeddingCacheTTLSeconds) * time.Second
		embedder = embedding.NewCachedEmbedder(embedder, redis.GetClient(), embedderMeta.Model, ttl)
	}
	chatModel, chatMeta, err := llm.NewChatModelFromConfig(ctx, conf)
	if err != nil {
		zlog.Fatal("chat model 初始化失败: " + err.Error())
		return
	}
	zlog.Info(fmt.Sprintf("模型就绪: chat=%s/%s embedding=%s/%s",
		chatMeta.Provider, chatMeta.Model, embedderMeta.Provider, embedderMeta.Model))
	completer := llm.NewCompleter(chatModel, conf.AIConfig.ChatModel.Temperature, conf.AIConfig.ChatModel.MaxTokens)

	// ---- 编排层 ----
	retrievePipe, err := pipeline.NewRetrievePipeline(embedder, vectorStore, chunkRepo, vectorDim)
	if err != nil {
		zlog.Fatal("retrieve pipeline 初始化失败: " + err.Error())
		return
	}
	chunker := chunking.NewRecursiveChunker(conf.QAConfig.ChunkSize, conf.QAConfig.ChunkOverlap)
	ingestPipe, err := pipeline.NewIngestPipeline(chunkRepo, vectorStore, embedder, chunker, vectorDim)
	if err != nil {
		zlog.Fatal("ingest pipeline 初始化失败: " + err.Error())
		return
	}
	chatPipe, err := pipeline.NewChatPipeline(completer, retrievePipe, titanicStore,
		conf.QAConfig.TopK, conf.QAConfig.HistoryTurns, conf.QAConfig.NarrateRows)
	if err != nil {
		zlog.Fatal("chat pipeline 初始化失败: " + err.Error())
		return
	}

	// ---- Kafka（可选，缺失时异步摄取接口返回错误，其余功能不受影响） ----
	if len(conf.KafkaConfig.Brokers) > 0 {
		pub, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			ClientID: conf.KafkaConfig.ClientID,
		})
		if err != nil {
			zlog.Warn("kafka producer 初始化失败，异步摄取不可用: " + err.Error())
		} else {
			Publisher = pub
		}
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			GroupID:  conf.KafkaConfig.ConsumerGroupID,
			Topics:   []string{conf.KafkaConfig.IngestTopic},
			ClientID: conf.KafkaConfig.ClientID,
		})
		if err != nil {
			zlog.Warn("kafka consumer 初始化失败，摄取事件不会被消费: " + err.Error())
		} else {
			IngestWorker = queue.NewIngestConsumerWorker(consumer, eventRepo, datasetRepo, ingestPipe)
		}
	} else {
		zlog.Warn("kafka 未配置，异步摄取接口不可用")
	}

	// ---- 服务与路由 ----
	userSvc := service.NewUserInfoService(userRepo)
	historySvc := historyService.NewHistoryService(userChatRepo)
	chatSvc := qaService.NewChatService(chatPipe, retrievePipe)
	ingestSvc := qaService.NewIngestService(ingestPipe, datasetRepo)
	asyncIngestSvc := qaService.NewAsyncIngestService(Publisher, conf.KafkaConfig.IngestTopic)
	adminSvc := qaService.NewAdminService(chunkRepo, datasetRepo)

	userH := userHandler.NewUserInfoHandler(userSvc)
	historyH := historyHandler.NewHistoryHandler(historySvc)
	chatH := qaHandler.NewChatHandler(chatSvc)
	ingestH := qaHandler.NewIngestHandler(ingestSvc, asyncIngestSvc)
	adminH := qaHandler.NewAdminHandler(adminSvc)
	chatWsH := qaWebsocket.NewChatWSHandler(chatSvc)

	GE.POST("/user/register", userH.Register)
	GE.POST("/user/login", userH.Login)
	// 浏览器 WebSocket 无法带 Authorization 头，握手时用 ?token= 鉴权
	GE.GET("/qa/chat/ws", chatWsH.Chat)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/auth/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"uuid":     c.GetString("uuid"),
			"username": c.GetString("username"),
		})
	})
	authed.POST("/qa/chat", chatH.Chat)
	authed.POST("/qa/retrieve", chatH.Retrieve)
	authed.POST("/qa/ingest/document", ingestH.IngestDocument)
	authed.POST("/qa/ingest/sync", ingestH.IngestSync)
	authed.POST("/qa/ingest/narrate", ingestH.NarrateDataset)
	authed.GET("/qa/admin/stats", adminH.Stats)
	authed.POST("/history/save", historyH.SaveChat)
	authed.GET("/history/list", historyH.ListChats)
	authed.GET("/history/detail/:uuid", historyH.GetChat)
	authed.POST("/history/delete", historyH.DeleteChat)
}
