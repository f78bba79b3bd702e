package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Orion_Tube/internal/data"
	"Orion_Tube/internal/handler"
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/repository"
	"Orion_Tube/internal/router"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/config"
	"Orion_Tube/pkg/database"
	"Orion_Tube/pkg/jwt"
	"Orion_Tube/pkg/logger"
	"Orion_Tube/pkg/mux"
	"Orion_Tube/pkg/rabbitmq"
	"Orion_Tube/pkg/redis"
	"Orion_Tube/pkg/storage"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
)

func main() {
	// 加载配置：.env + 环境变量
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	// 初始化logger
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// Redis只做缓存和限流，连不上就降级运行
	var redisClient *goredis.Client
	if rdb, err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Log.WithError(err).Warn("无法连接到Redis，缓存和限流将关闭")
	} else {
		redisClient = rdb
		defer redisClient.Close()
		logger.Log.Info("Redis连接成功")
	}

	// 初始化RabbitMQ，清理任务依赖它
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatalf("无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close() // 确保程序退出时关闭连接
	if err := rabbitmq.DeclareQueue(rabbitMQConn, service.QueueVideoCleanup); err != nil {
		logger.Log.Fatalf("声明清理队列失败: %v", err)
	}
	logger.Log.Info("RabbitMQ连接成功")

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBReplicaDSNs)
	if err != nil {
		logger.Log.Fatalf("无法连接到数据库: %v", err)
	}
	logger.Log.Info("数据库连接成功")
	// db.AutoMigrate(),没有这个表就创建,没有属性列则创建列,没有约束则增加约束;不会主动删除和修改
	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	ctx := context.Background()
	store, err := storage.New(ctx, storage.Config{
		Driver:    cfg.StorageDriver,
		Endpoint:  cfg.StorageEndpoint,
		PublicURL: cfg.StoragePublicURL,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		Region:    cfg.StorageRegion,
		UseSSL:    cfg.StorageUseSSL,
	})
	if err != nil {
		logger.Log.Fatalf("对象存储初始化失败: %v", err)
	}
	muxClient := mux.NewClient(mux.Config{
		BaseURL:     cfg.MuxBaseURL,
		TokenID:     cfg.MuxTokenID,
		TokenSecret: cfg.MuxTokenSecret,
		RPS:         cfg.MuxRPS,
	})
	if cfg.MuxWebhookSecret == "" {
		logger.Log.Warn("未配置MUX_WEBHOOK_SECRET，Mux回调将返回503")
	}
	tokens := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL)
	publisher := rabbitmq.NewPublisher(rabbitMQConn)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	videoRepo := repository.NewVideoRepository(db, redisClient)
	viewRepo := repository.NewViewRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	uow := data.NewUnitOfWork(db, data.Repositories{
		Video:        videoRepo,
		Comment:      commentRepo,
		Reaction:     reactionRepo,
		Playlist:     playlistRepo,
		WebhookEvent: webhookEventRepo,
	})

	userService := service.NewUserService(userRepo, videoRepo, subRepo, tokens)
	categoryService := service.NewCategoryService(categoryRepo)
	videoService := service.NewVideoService(videoRepo, viewRepo, reactionRepo, subRepo, uow)
	studioService := service.NewStudioService(videoRepo, categoryRepo, viewRepo, reactionRepo, muxClient, store, publisher)
	commentService := service.NewCommentService(commentRepo, reactionRepo, videoService, uow)
	subscriptionService := service.NewSubscriptionService(subRepo, userRepo)
	playlistService := service.NewPlaylistService(playlistRepo, videoRepo, reactionRepo, viewRepo, uow)
	webhookService := service.NewWebhookService(uow, videoRepo, publisher, cfg.MuxWebhookSecret)

	r := router.SetupRouter(router.Handlers{
		User:         handler.NewUserHandler(userService),
		Category:     handler.NewCategoryHandler(categoryService),
		Video:        handler.NewVideoHandler(videoService),
		Studio:       handler.NewStudioHandler(studioService),
		Reaction:     handler.NewReactionHandler(videoService, commentService),
		Comment:      handler.NewCommentHandler(commentService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Playlist:     handler.NewPlaylistHandler(playlistService),
		Webhook:      handler.NewWebhookHandler(webhookService),
	}, router.Options{
		CORSOrigins:     cfg.CORSOrigins,
		Tokens:          tokens,
		Redis:           redisClient,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Log.Printf("服务器将在: %s端口启动", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待退出信号，给进行中的请求5秒收尾
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("服务器关闭超时")
	}
	logger.Log.Info("服务器已退出")
}
