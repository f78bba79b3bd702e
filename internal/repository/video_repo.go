package repository

import (
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 按播放量排序用的相关子查询
const viewCountExpr = "(SELECT COUNT(*) FROM video_views WHERE video_views.video_id = videos.id)"

// VideoQuery 视频列表的过滤条件，零值表示不过滤
type VideoQuery struct {
	PublicOnly bool
	UserID     *uint64 // 某个作者的视频
	CategoryID *uint64
	Query      string // 标题包含
	// 只看该用户订阅的创作者
	SubscribedBy *uint64
	ExcludeID    uint64
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	FindByID(ctx context.Context, videoID uint64) (*model.Video, error)
	FindByUploadID(ctx context.Context, uploadID string) (*model.Video, error)
	FindByAssetID(ctx context.Context, assetID string) (*model.Video, error)
	// 按ID批量查询，结果顺序与ids一致，不存在的跳过
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Video, error)
	Update(ctx context.Context, videoID uint64, updates map[string]any) error
	Delete(ctx context.Context, videoID uint64) error

	List(ctx context.Context, q VideoQuery, req pagination.Request) ([]model.Video, error)
	ListTrending(ctx context.Context, q VideoQuery, req pagination.Request) ([]model.Video, error)
	CountByUser(ctx context.Context, userID uint64, publicOnly bool) (int64, error)

	GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
	DeleteVideoCache(ctx context.Context, videoID uint64) error

	WithTx(tx *gorm.DB) VideoRepository
}

type videoRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewVideoRepository(db *gorm.DB, rdb *redis.Client) VideoRepository {
	return &videoRepository{
		db:  db,
		rdb: rdb,
	}
}

// WithTx 返回一个新的、使用事务的 videoRepository 实例，事务里不操作Redis
func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	return &videoRepository{
		db: tx,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// 利用videoID找视频，preload其中的User结构
func (r *videoRepository) FindByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Preload("User").First(&video, videoID).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) FindByUploadID(ctx context.Context, uploadID string) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Where("mux_upload_id = ?", uploadID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) FindByAssetID(ctx context.Context, assetID string) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Where("mux_asset_id = ?", assetID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Video, error) {
	if len(ids) == 0 {
		return []model.Video{}, nil
	}
	var videos []model.Video
	if err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&videos).Error; err != nil {
		return nil, err
	}
	// IN查询不保证顺序，按传入的ids重新排列
	byID := make(map[uint64]model.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	ordered := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

// Update 只更新传入的列，同时刷新updated_at
func (r *videoRepository) Update(ctx context.Context, videoID uint64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Video{BaseModel: model.BaseModel{ID: videoID}}).Updates(updates).Error
}

// Delete 硬删除，评论、反应、观看记录、播放列表关联由外键级联删除
func (r *videoRepository) Delete(ctx context.Context, videoID uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.Video{}, videoID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// filter 把VideoQuery翻译成where条件，列名都带上表名，方便和子查询、join一起用
func (q VideoQuery) filter(db *gorm.DB) *gorm.DB {
	if q.PublicOnly {
		db = db.Where("videos.visibility = ?", model.VisibilityPublic)
	}
	if q.UserID != nil {
		db = db.Where("videos.user_id = ?", *q.UserID)
	}
	if q.CategoryID != nil {
		db = db.Where("videos.category_id = ?", *q.CategoryID)
	}
	if q.Query != "" {
		// 不区分大小写，MySQL和Postgres行为一致
		db = db.Where("LOWER(videos.title) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(q.Query))+"%")
	}
	if q.SubscribedBy != nil {
		db = db.Where("videos.user_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&model.Subscription{}).Select("creator_id").Where("viewer_id = ?", *q.SubscribedBy))
	}
	if q.ExcludeID != 0 {
		db = db.Where("videos.id <> ?", q.ExcludeID)
	}
	return db
}

// List 按(updated_at, id)倒序的游标分页，多取一行用来判断是否还有下一页
func (r *videoRepository) List(ctx context.Context, q VideoQuery, req pagination.Request) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(q.filter, pagination.Keyset("videos.updated_at", "videos.id", req, false)).
		Find(&videos).Error
	return videos, err
}

// ListTrending 按播放量倒序，游标里存的是播放量
func (r *videoRepository) ListTrending(ctx context.Context, q VideoQuery, req pagination.Request) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(q.filter, pagination.Keyset(viewCountExpr, "videos.id", req, true)).
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) CountByUser(ctx context.Context, userID uint64, publicOnly bool) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Video{}).Where("user_id = ?", userID)
	if publicOnly {
		db = db.Where("visibility = ?", model.VisibilityPublic)
	}
	err := db.Count(&count).Error
	return count, err
}

// 返回存储单个视频信息的字符串Key
func (r *videoRepository) keyVideoInfo(videoID uint64) string {
	return fmt.Sprintf("video:info:%d", videoID)
}

// 从Redis缓存中获取单个Video信息：1、利用VideoID组装key 2、拿key去rdb中寻找videoJSON 3、利用json.Unmarshal将拿到的videoJSON反序列化
// 没配置Redis时当作缓存未命中
func (r *videoRepository) GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error) {
	if r.rdb == nil {
		return nil, nil
	}
	videoJSON, err := r.rdb.Get(ctx, r.keyVideoInfo(videoID)).Result()
	if err == redis.Nil {
		return nil, nil // 如果缓存不存在，但是Redis正常工作
	} else if err != nil {
		return nil, err // Redis本身出错了
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// 将单个视频信息存入Redis缓存：1、序列化成JSON字符串 2、设置带随机性的过期时间防止缓存雪崩 3、SET写入
func (r *videoRepository) SetVideoCache(ctx context.Context, video *model.Video) error {
	if r.rdb == nil {
		return nil
	}
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err
	}
	expiration := time.Minute*5 + time.Duration(rand.Intn(60))*time.Second
	return r.rdb.Set(ctx, r.keyVideoInfo(video.ID), videoJSON, expiration).Err()
}

// 视频任何一列被修改后都要删除缓存，下次读取时重新加载
func (r *videoRepository) DeleteVideoCache(ctx context.Context, videoID uint64) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, r.keyVideoInfo(videoID)).Err()
}

// 搜索词里的%和_按字面匹配；MySQL字符串里的反斜杠会被转义，换用!
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
