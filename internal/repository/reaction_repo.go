package repository

import (
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// idCount GROUP BY统计结果的通用扫描结构
type idCount struct {
	ID    uint64
	Count int64
}

// ReactionCount 一个对象的点赞/点踩数
type ReactionCount struct {
	Likes    int64
	Dislikes int64
}

type ReactionRepository interface {
	FindVideoReaction(ctx context.Context, userID, videoID uint64) (*model.VideoReaction, error)
	// 已存在则改成新的type，同时刷新updated_at
	UpsertVideoReaction(ctx context.Context, reaction *model.VideoReaction) error
	DeleteVideoReaction(ctx context.Context, userID, videoID uint64) error
	VideoReactionCounts(ctx context.Context, videoIDs []uint64) (map[uint64]ReactionCount, error)
	ViewerVideoReactions(ctx context.Context, userID uint64, videoIDs []uint64) (map[uint64]string, error)
	// 用户点过赞的公开视频，按点赞时间倒序
	ListLiked(ctx context.Context, userID uint64, req pagination.Request) ([]model.VideoReaction, error)

	FindCommentReaction(ctx context.Context, userID, commentID uint64) (*model.CommentReaction, error)
	UpsertCommentReaction(ctx context.Context, reaction *model.CommentReaction) error
	DeleteCommentReaction(ctx context.Context, userID, commentID uint64) error
	CommentReactionCounts(ctx context.Context, commentIDs []uint64) (map[uint64]ReactionCount, error)
	ViewerCommentReactions(ctx context.Context, userID uint64, commentIDs []uint64) (map[uint64]string, error)

	WithTx(tx *gorm.DB) ReactionRepository
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) WithTx(tx *gorm.DB) ReactionRepository {
	return &reactionRepository{db: tx}
}

// 没有记录时返回(nil, nil)
func (r *reactionRepository) FindVideoReaction(ctx context.Context, userID, videoID uint64) (*model.VideoReaction, error) {
	var reaction model.VideoReaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND video_id = ?", userID, videoID).First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) UpsertVideoReaction(ctx context.Context, reaction *model.VideoReaction) error {
	// INSERT ... ON CONFLICT (user_id, video_id) DO UPDATE SET type, updated_at
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(reaction).Error
}

func (r *reactionRepository) DeleteVideoReaction(ctx context.Context, userID, videoID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND video_id = ?", userID, videoID).Delete(&model.VideoReaction{}).Error
}

func (r *reactionRepository) VideoReactionCounts(ctx context.Context, videoIDs []uint64) (map[uint64]ReactionCount, error) {
	return reactionCounts(r.db.WithContext(ctx).Model(&model.VideoReaction{}), "video_id", videoIDs)
}

func (r *reactionRepository) ViewerVideoReactions(ctx context.Context, userID uint64, videoIDs []uint64) (map[uint64]string, error) {
	result := make(map[uint64]string, len(videoIDs))
	if len(videoIDs) == 0 {
		return result, nil
	}
	var rows []model.VideoReaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND video_id IN ?", userID, videoIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.VideoID] = row.Type
	}
	return result, nil
}

func (r *reactionRepository) ListLiked(ctx context.Context, userID uint64, req pagination.Request) ([]model.VideoReaction, error) {
	var rows []model.VideoReaction
	err := r.db.WithContext(ctx).
		Select("video_reactions.*").
		Joins("JOIN videos ON videos.id = video_reactions.video_id").
		Where("video_reactions.user_id = ? AND video_reactions.type = ?", userID, model.ReactionLike).
		Where("videos.visibility = ?", model.VisibilityPublic).
		Scopes(pagination.Keyset("video_reactions.updated_at", "video_reactions.video_id", req, false)).
		Find(&rows).Error
	return rows, err
}

func (r *reactionRepository) FindCommentReaction(ctx context.Context, userID, commentID uint64) (*model.CommentReaction, error) {
	var reaction model.CommentReaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND comment_id = ?", userID, commentID).First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) UpsertCommentReaction(ctx context.Context, reaction *model.CommentReaction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(reaction).Error
}

func (r *reactionRepository) DeleteCommentReaction(ctx context.Context, userID, commentID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&model.CommentReaction{}).Error
}

func (r *reactionRepository) CommentReactionCounts(ctx context.Context, commentIDs []uint64) (map[uint64]ReactionCount, error) {
	return reactionCounts(r.db.WithContext(ctx).Model(&model.CommentReaction{}), "comment_id", commentIDs)
}

func (r *reactionRepository) ViewerCommentReactions(ctx context.Context, userID uint64, commentIDs []uint64) (map[uint64]string, error) {
	result := make(map[uint64]string, len(commentIDs))
	if len(commentIDs) == 0 {
		return result, nil
	}
	var rows []model.CommentReaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND comment_id IN ?", userID, commentIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.CommentID] = row.Type
	}
	return result, nil
}

// reactionCounts 按对象ID和type分组统计，一次查询拿到一页对象的点赞点踩数
func reactionCounts(db *gorm.DB, column string, ids []uint64) (map[uint64]ReactionCount, error) {
	counts := make(map[uint64]ReactionCount, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		ID    uint64
		Type  string
		Count int64
	}
	err := db.Select(column+" AS id, type, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column + ", type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := counts[row.ID]
		switch row.Type {
		case model.ReactionLike:
			c.Likes = row.Count
		case model.ReactionDislike:
			c.Dislikes = row.Count
		}
		counts[row.ID] = c
	}
	return counts, nil
}
