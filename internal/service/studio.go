package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/repository"
	"Orion_Tube/pkg/logger"
	"Orion_Tube/pkg/mux"
	"Orion_Tube/pkg/storage"

	"github.com/google/uuid"
)

// 自定义封面的大小上限
const MaxThumbnailSize = 4 << 20

// MuxClient 工作室用到的Mux接口
type MuxClient interface {
	CreateUpload(ctx context.Context, passthrough string) (*mux.Upload, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

// Publisher 消息投递
type Publisher interface {
	Publish(queue string, msg any) error
}

// UploadResult 新建上传：视频行和浏览器直传的地址
type UploadResult struct {
	Video model.Video
	URL   string
}

// VideoUpdate 为nil的字段不修改
type VideoUpdate struct {
	Title       *string
	Description *string
	CategoryID  *uint64
	Visibility  *string
}

// ThumbnailFile 上传的封面文件
type ThumbnailFile struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type StudioService interface {
	CreateUpload(ctx context.Context, userID uint64) (*UploadResult, error)
	List(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
	Get(ctx context.Context, userID, videoID uint64) (*model.Video, error)
	Update(ctx context.Context, userID, videoID uint64, in VideoUpdate) (*model.Video, error)
	Delete(ctx context.Context, userID, videoID uint64) error
	UploadThumbnail(ctx context.Context, userID, videoID uint64, file ThumbnailFile) (*model.Video, error)
	RestoreThumbnail(ctx context.Context, userID, videoID uint64) (*model.Video, error)
}

type studioService struct {
	videoRepo    repository.VideoRepository
	categoryRepo repository.CategoryRepository
	stats        videoStats
	mux          MuxClient
	store        storage.Storage
	publisher    Publisher
	now          func() time.Time
}

func NewStudioService(
	videoRepo repository.VideoRepository,
	categoryRepo repository.CategoryRepository,
	viewRepo repository.ViewRepository,
	reactionRepo repository.ReactionRepository,
	muxClient MuxClient,
	store storage.Storage,
	publisher Publisher,
) StudioService {
	return &studioService{
		videoRepo:    videoRepo,
		categoryRepo: categoryRepo,
		stats:        videoStats{views: viewRepo, reactions: reactionRepo},
		mux:          muxClient,
		store:        store,
		publisher:    publisher,
		now:          time.Now,
	}
}

// 创建上传：1、向Mux申请直传地址，passthrough带上用户ID 2、落库一个等待中的视频
func (s *studioService) CreateUpload(ctx context.Context, userID uint64) (*UploadResult, error) {
	upload, err := s.mux.CreateUpload(ctx, strconv.FormatUint(userID, 10))
	if err != nil {
		return nil, fmt.Errorf("%w: 创建Mux上传失败: %v", ErrUnavailable, err)
	}

	uploadID, status := upload.ID, model.MuxStatusWaiting
	video := &model.Video{
		UserID:      userID,
		Title:       fmt.Sprintf("Untitled-%d", s.now().UnixMilli()),
		Visibility:  model.VisibilityPrivate,
		MuxStatus:   &status,
		MuxUploadID: &uploadID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}
	return &UploadResult{Video: *video, URL: upload.URL}, nil
}

func (s *studioService) List(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	videos, err := s.videoRepo.List(ctx, repository.VideoQuery{UserID: &userID}, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	items, err := s.stats.enrich(ctx, videos, userID)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	return pagination.Build(items, req.Limit, videoKeyByUpdatedAt), nil
}

// 不是自己的视频一律按不存在处理
func (s *studioService) Get(ctx context.Context, userID, videoID uint64) (*model.Video, error) {
	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	if video.UserID != userID {
		return nil, fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}
	return video, nil
}

func (s *studioService) Update(ctx context.Context, userID, videoID uint64, in VideoUpdate) (*model.Video, error) {
	if _, err := s.Get(ctx, userID, videoID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: 标题不能为空", ErrBadRequest)
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Visibility != nil {
		if *in.Visibility != model.VisibilityPrivate && *in.Visibility != model.VisibilityPublic {
			return nil, fmt.Errorf("%w: visibility只能是private或public", ErrBadRequest)
		}
		updates["visibility"] = *in.Visibility
	}
	if in.CategoryID != nil {
		ok, err := s.categoryRepo.Exists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: 分类不存在", ErrBadRequest)
		}
		updates["category_id"] = *in.CategoryID
	}

	if len(updates) > 0 {
		if err := s.videoRepo.Update(ctx, videoID, updates); err != nil {
			return nil, err
		}
		s.evict(videoID)
	}
	return s.Get(ctx, userID, videoID)
}

// 删除视频：1、删库(评论、反应、播放记录随外键级联) 2、清缓存 3、投递清理消息，由consumer删除对象存储和Mux资源
func (s *studioService) Delete(ctx context.Context, userID, videoID uint64) error {
	video, err := s.Get(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		return notFoundOr(err, "视频不存在")
	}
	s.evict(videoID)

	msg := VideoCleanupMessage{
		VideoID:    video.ID,
		MuxAssetID: video.MuxAssetID,
		ObjectKeys: video.ObjectKeys(),
	}
	if len(msg.ObjectKeys) == 0 && msg.MuxAssetID == nil {
		return nil
	}
	if err := s.publisher.Publish(QueueVideoCleanup, msg); err != nil {
		// 视频已经删掉了，清理消息丢失只会留下孤儿对象，记录下来人工处理
		logger.Log.WithError(err).
			WithField("video_id", video.ID).
			WithField("object_keys", msg.ObjectKeys).
			Error("视频清理消息投递失败")
	}
	return nil
}

// 上传封面：1、校验类型和大小 2、存新对象 3、更新视频 4、删除旧的自定义封面
func (s *studioService) UploadThumbnail(ctx context.Context, userID, videoID uint64, file ThumbnailFile) (*model.Video, error) {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, fmt.Errorf("%w: 封面必须是图片", ErrBadRequest)
	}
	if file.Size <= 0 || file.Size > MaxThumbnailSize {
		return nil, fmt.Errorf("%w: 封面大小不能超过4MB", ErrBadRequest)
	}
	video, err := s.Get(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("thumbnails/%d/%s%s", videoID, uuid.NewString(), path.Ext(file.Filename))
	url, err := s.store.Put(ctx, key, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: 封面上传失败: %v", ErrUnavailable, err)
	}
	if err := s.videoRepo.Update(ctx, videoID, map[string]any{
		"thumbnail_url": url,
		"thumbnail_key": key,
	}); err != nil {
		return nil, err
	}
	s.evict(videoID)

	if video.ThumbnailKey != nil && *video.ThumbnailKey != "" {
		s.deleteObject(ctx, *video.ThumbnailKey)
	}
	return s.Get(ctx, userID, videoID)
}

// 恢复封面：删掉自定义封面，改回Mux生成的缩略图
func (s *studioService) RestoreThumbnail(ctx context.Context, userID, videoID uint64) (*model.Video, error) {
	video, err := s.Get(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if video.MuxPlaybackID == nil || *video.MuxPlaybackID == "" {
		return nil, fmt.Errorf("%w: 视频还没有可用的播放ID", ErrBadRequest)
	}

	if err := s.videoRepo.Update(ctx, videoID, map[string]any{
		"thumbnail_url": mux.ThumbnailURL(*video.MuxPlaybackID),
		"thumbnail_key": nil,
	}); err != nil {
		return nil, err
	}
	s.evict(videoID)

	if video.ThumbnailKey != nil && *video.ThumbnailKey != "" {
		s.deleteObject(ctx, *video.ThumbnailKey)
	}
	return s.Get(ctx, userID, videoID)
}

func (s *studioService) evict(videoID uint64) {
	if err := s.videoRepo.DeleteVideoCache(context.Background(), videoID); err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("清除视频缓存失败")
	}
}

func (s *studioService) deleteObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("删除旧封面失败")
	}
}
