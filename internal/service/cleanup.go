package service

import (
	"context"
	"errors"
	"fmt"

	"Orion_Tube/pkg/logger"
	"Orion_Tube/pkg/mux"
	"Orion_Tube/pkg/storage"
)

const (
	QueueVideoCleanup = "orion.video_cleanup.queue"
)

// VideoCleanupMessage 删除视频后需要异步清理的外部资源
type VideoCleanupMessage struct {
	VideoID    uint64   `json:"video_id"`
	MuxAssetID *string  `json:"mux_asset_id,omitempty"`
	ObjectKeys []string `json:"object_keys"`
}

// ErrCleanupRejected Mux拒绝了删除请求(400、401等)，消息重投也不会成功
var ErrCleanupRejected = errors.New("清理请求被拒绝")

type CleanupService interface {
	// Process 返回错误表示可以重试，ErrCleanupRejected除外
	Process(ctx context.Context, msg VideoCleanupMessage) error
}

type cleanupService struct {
	store storage.Storage
	mux   MuxClient
}

func NewCleanupService(store storage.Storage, muxClient MuxClient) CleanupService {
	return &cleanupService{store: store, mux: muxClient}
}

// 清理：1、逐个删除对象存储里的文件 2、删除Mux资源(404视为已删除)
// 任何一步失败都返回错误，消息重新入队后整个流程再跑一遍，删除操作本身是幂等的；Mux明确拒绝时返回ErrCleanupRejected
func (s *cleanupService) Process(ctx context.Context, msg VideoCleanupMessage) error {
	logCtx := logger.Log.WithField("video_id", msg.VideoID)

	for _, key := range msg.ObjectKeys {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("删除对象%s失败: %w", key, err)
		}
		logCtx.WithField("key", key).Debug("对象已删除")
	}

	if msg.MuxAssetID != nil && *msg.MuxAssetID != "" {
		if err := s.mux.DeleteAsset(ctx, *msg.MuxAssetID); err != nil {
			if mux.IsPermanent(err) {
				return fmt.Errorf("%w: 删除Mux资源%s失败: %w", ErrCleanupRejected, *msg.MuxAssetID, err)
			}
			return fmt.Errorf("删除Mux资源%s失败: %w", *msg.MuxAssetID, err)
		}
	}
	logCtx.Info("视频资源清理完成")
	return nil
}
