package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Orion_Tube/internal/data"
	"Orion_Tube/internal/model"
	"Orion_Tube/pkg/database"
	"Orion_Tube/pkg/logger"
	"Orion_Tube/pkg/mux"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WebhookService interface {
	// Handle 校验签名并应用一次Mux投递；重放的投递直接返回nil
	Handle(ctx context.Context, body []byte, signature string) error
}

type webhookService struct {
	uow       data.UnitOfWork
	evictor   cacheEvictor
	publisher Publisher
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

// cacheEvictor 事务提交后清除视频缓存
type cacheEvictor interface {
	DeleteVideoCache(ctx context.Context, videoID uint64) error
}

func NewWebhookService(uow data.UnitOfWork, evictor cacheEvictor, publisher Publisher, secret string) WebhookService {
	return &webhookService{
		uow:       uow,
		evictor:   evictor,
		publisher: publisher,
		secret:    secret,
		tolerance: mux.DefaultTolerance,
		now:       time.Now,
	}
}

// 事务里要做的事的结果
type webhookOutcome struct {
	videoID uint64
	deleted *model.Video
}

// 处理投递：1、验签 2、解析 3、事务里判重、更新视频、记录event_id 4、提交后清缓存
func (s *webhookService) Handle(ctx context.Context, body []byte, signature string) error {
	if s.secret == "" {
		return fmt.Errorf("%w: 没有配置MUX_WEBHOOK_SECRET", ErrUnavailable)
	}
	if err := mux.VerifySignature(body, signature, s.secret, s.tolerance, s.now()); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	event, err := mux.ParseEvent(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	logCtx := logger.Log.WithField("event_id", event.ID).WithField("type", event.Type)

	switch event.Type {
	case mux.EventAssetCreated, mux.EventAssetReady, mux.EventAssetErrored, mux.EventAssetDeleted:
		if event.Data.UploadID == "" {
			return fmt.Errorf("%w: 缺少upload_id", ErrBadRequest)
		}
	case mux.EventAssetTrackReady:
		if event.Data.AssetID == "" {
			return fmt.Errorf("%w: 缺少asset_id", ErrBadRequest)
		}
	default:
		logCtx.Debug("忽略未处理的webhook事件")
		return nil
	}
	if event.Type == mux.EventAssetReady && event.Data.FirstPlaybackID() == "" {
		return fmt.Errorf("%w: 缺少playback id", ErrBadRequest)
	}

	var outcome webhookOutcome
	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if event.ID != "" {
			seen, err := repos.WebhookEventRepo.Exists(ctx, event.ID)
			if err != nil {
				return err
			}
			if seen {
				return errReplayed
			}
		}

		out, err := s.apply(ctx, repos, event)
		if err != nil {
			return err
		}
		outcome = out

		if event.ID == "" {
			return nil
		}
		record := &model.MuxWebhookEvent{
			EventID: event.ID,
			Type:    event.Type,
			Payload: datatypes.JSON(body),
		}
		if event.Data.UploadID != "" {
			uploadID := event.Data.UploadID
			record.UploadID = &uploadID
		}
		return repos.WebhookEventRepo.Record(ctx, record)
	})
	switch {
	case errors.Is(err, errReplayed), database.IsDuplicateKey(err):
		// 同一事件被并发投递时，后到的一次撞上唯一索引，也按重放处理
		logCtx.Info("重复的webhook投递，已跳过")
		return nil
	case err != nil:
		return err
	}

	if outcome.videoID != 0 {
		if err := s.evictor.DeleteVideoCache(ctx, outcome.videoID); err != nil {
			logCtx.WithError(err).Warn("清除视频缓存失败")
		}
	}
	if outcome.deleted != nil {
		s.publishCleanup(outcome.deleted)
	}
	logCtx.WithField("video_id", outcome.videoID).Info("webhook处理完成")
	return nil
}

var errReplayed = errors.New("webhook事件已处理")

func (s *webhookService) apply(ctx context.Context, repos *data.TransactionalRepositories, event *mux.Event) (webhookOutcome, error) {
	d := event.Data

	var (
		video *model.Video
		err   error
	)
	if event.Type == mux.EventAssetTrackReady {
		video, err = repos.VideoRepo.FindByAssetID(ctx, d.AssetID)
	} else {
		video, err = repos.VideoRepo.FindByUploadID(ctx, d.UploadID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 没有对应的视频(可能已被删除)，事件照常记录
		return webhookOutcome{}, nil
	}
	if err != nil {
		return webhookOutcome{}, err
	}
	outcome := webhookOutcome{videoID: video.ID}

	switch event.Type {
	case mux.EventAssetCreated:
		err = repos.VideoRepo.Update(ctx, video.ID, map[string]any{
			"mux_asset_id": d.ID,
			"mux_status":   d.Status,
		})
	case mux.EventAssetReady:
		playbackID := d.FirstPlaybackID()
		updates := map[string]any{
			"mux_status":      d.Status,
			"mux_playback_id": playbackID,
			"mux_asset_id":    d.ID,
			"preview_url":     mux.PreviewURL(playbackID),
			"duration":        d.DurationMillis(),
		}
		// 用户上传过自定义封面时保留
		if video.ThumbnailKey == nil || *video.ThumbnailKey == "" {
			updates["thumbnail_url"] = mux.ThumbnailURL(playbackID)
		}
		err = repos.VideoRepo.Update(ctx, video.ID, updates)
	case mux.EventAssetErrored:
		err = repos.VideoRepo.Update(ctx, video.ID, map[string]any{"mux_status": d.Status})
	case mux.EventAssetDeleted:
		if err = repos.VideoRepo.Delete(ctx, video.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			err = nil
		}
		outcome.deleted = video
	case mux.EventAssetTrackReady:
		err = repos.VideoRepo.Update(ctx, video.ID, map[string]any{
			"mux_track_id":     d.ID,
			"mux_track_status": d.Status,
		})
	}
	return outcome, err
}

// Mux那边的资源已经没了，只需要清理对象存储
func (s *webhookService) publishCleanup(video *model.Video) {
	keys := video.ObjectKeys()
	if len(keys) == 0 || s.publisher == nil {
		return
	}
	msg := VideoCleanupMessage{VideoID: video.ID, ObjectKeys: keys}
	if err := s.publisher.Publish(QueueVideoCleanup, msg); err != nil {
		logger.Log.WithError(err).WithField("video_id", video.ID).Error("视频清理消息投递失败")
	}
}
