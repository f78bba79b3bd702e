package repository

import (
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"context"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	// 只删除自己的评论，返回是否真的删掉了
	DeleteByOwner(ctx context.Context, commentID, userID uint64) (bool, error)

	// parentID为nil时分页获取一级评论，否则获取该评论的回复
	List(ctx context.Context, videoID uint64, parentID *uint64, req pagination.Request) ([]model.Comment, error)
	// 视频下所有评论的数量，包括回复
	CountByVideo(ctx context.Context, videoID uint64) (int64, error)
	// 根据一批父评论ID，统计各自的回复数
	ReplyCounts(ctx context.Context, parentIDs []uint64) (map[uint64]int64, error)

	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx 返回一个新的、使用事务的 commentRepository 实例
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{
		db: tx,
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// 利用commentID找comment，并顺便将结构体中的User给Preload进去
func (r *commentRepository) FindByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	err := r.db.WithContext(ctx).Preload("User").First(&result, commentID).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// 回复和评论反应由外键级联删除
func (r *commentRepository) DeleteByOwner(ctx context.Context, commentID, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", commentID, userID).Delete(&model.Comment{})
	return res.RowsAffected > 0, res.Error
}

func (r *commentRepository) List(ctx context.Context, videoID uint64, parentID *uint64, req pagination.Request) ([]model.Comment, error) {
	var comments []model.Comment
	db := r.db.WithContext(ctx).
		Preload("User"). // 预加载评论的作者信息
		Where("comments.video_id = ?", videoID)
	if parentID == nil {
		db = db.Where("comments.parent_id IS NULL")
	} else {
		db = db.Where("comments.parent_id = ?", *parentID)
	}
	err := db.Scopes(pagination.Keyset("comments.updated_at", "comments.id", req, false)).Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByVideo(ctx context.Context, videoID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}

func (r *commentRepository) ReplyCounts(ctx context.Context, parentIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("parent_id AS id, COUNT(*) AS count").
		Where("parent_id IN ?", parentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}
