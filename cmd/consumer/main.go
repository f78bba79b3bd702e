package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/config"
	"Orion_Tube/pkg/logger"
	"Orion_Tube/pkg/mux"
	"Orion_Tube/pkg/rabbitmq"
	"Orion_Tube/pkg/storage"

	"github.com/streadway/amqp"
)

// 单条清理消息的处理上限
const processTimeout = time.Minute

// 消费者进程：连接rabbitMQ、对象存储和Mux，删除已删视频残留的缩略图和转码资源
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	// 连接RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()
	if err := rabbitmq.DeclareQueue(rabbitMQConn, service.QueueVideoCleanup); err != nil {
		logger.Log.Fatalf("声明清理队列失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	cleanup := service.NewCleanupService(store, muxClient)

	consumeCleanups(ctx, rabbitMQConn, cleanup)
}

// 清理消息消费者：1、通过mq的TCP连接创建channel 2、通过ch注册消费者 3、持续消费消息直到收到退出信号 4、根据处理结果Ack/Nack
func consumeCleanups(ctx context.Context, conn *amqp.Connection, cleanup service.CleanupService) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	// 一次只取一条，处理完再取下一条
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Log.Fatalf("设置Qos失败: %v", err)
	}

	msgs, err := ch.Consume(
		service.QueueVideoCleanup, // queue
		"",                        // consumer
		false,                     // auto-ack: 处理完手动确认
		false,                     // exclusive
		false,                     // no-local
		false,                     // no-wait
		nil,                       // args
	)
	if err != nil {
		logger.Log.Fatalf("无法注册清理消费者: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// msgs不是切片，而是通道channel，连接关闭后循环结束
		for d := range msgs {
			handleDelivery(ctx, cleanup, d)
		}
	}()
	logger.Log.Info(" [*] 等待视频清理消息中. 按 CTRL+C 退出")

	select {
	case <-ctx.Done():
		logger.Log.Info("收到退出信号，停止消费")
	case <-done:
		logger.Log.Warn("消息通道已关闭")
	}
}

func handleDelivery(ctx context.Context, cleanup service.CleanupService, d amqp.Delivery) {
	logCtx := logger.Log.WithField("message_id", d.MessageId).WithField("redelivered", d.Redelivered)
	logCtx.Info("收到一条视频清理消息")

	var msg service.VideoCleanupMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logCtx.WithError(err).Error("消息JSON解析失败")
		// 对于无法解析的“坏消息”，通知mq处理失败，并直接删除
		d.Nack(false, false)
		return
	}
	logCtx = logCtx.WithField("video_id", msg.VideoID)

	pctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()
	if err := cleanup.Process(pctx, msg); err != nil {
		if errors.Is(err, service.ErrCleanupRejected) {
			// Mux拒绝了请求，重投没有意义，直接丢弃
			logCtx.WithError(err).Error("清理请求被拒绝，丢弃消息")
			d.Nack(false, false)
			return
		}
		// 存储或Mux暂时不可用，要求重试
		logCtx.WithError(err).Warn("处理消息失败，将进行重试")
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}
