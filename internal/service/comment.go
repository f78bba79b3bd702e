package service

import (
	"context"
	"fmt"
	"strings"

	"Orion_Tube/internal/data"
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/repository"

	"golang.org/x/sync/errgroup"
)

// CommentItem 评论列表里的一项
type CommentItem struct {
	Comment        model.Comment
	ReplyCount     int64
	LikeCount      int64
	DislikeCount   int64
	ViewerReaction *string
}

// CommentPage 一页评论，TotalCount是视频下所有评论(含回复)的数量
type CommentPage struct {
	pagination.Page[CommentItem]
	TotalCount int64
}

type CommentService interface {
	// parentID不为空时是回复，只允许回复一级评论
	Create(ctx context.Context, userID, videoID uint64, parentID *uint64, value string) (*model.Comment, error)
	Delete(ctx context.Context, userID, commentID uint64) error
	GetMany(ctx context.Context, videoID uint64, parentID *uint64, viewerID uint64, req pagination.Request) (*CommentPage, error)
	React(ctx context.Context, userID, commentID uint64, reactionType string) (*string, error)
}

type commentService struct {
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository
	videos       VideoService
	uow          data.UnitOfWork
}

func NewCommentService(commentRepo repository.CommentRepository, reactionRepo repository.ReactionRepository, videos VideoService, uow data.UnitOfWork) CommentService {
	return &commentService{
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		videos:       videos,
		uow:          uow,
	}
}

// visibleVideo 视频对当前用户不可见时按不存在处理
func (s *commentService) visibleVideo(ctx context.Context, videoID, viewerID uint64) error {
	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if !canView(video, viewerID) {
		return fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}
	return nil
}

// 创建评论：1、校验内容和视频 2、如果是回复，父评论必须存在、是一级评论、属于同一个视频 3、创建后带着User再查一次
func (s *commentService) Create(ctx context.Context, userID, videoID uint64, parentID *uint64, value string) (*model.Comment, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: 评论内容不能为空", ErrBadRequest)
	}
	if err := s.visibleVideo(ctx, videoID, userID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.commentRepo.FindByID(ctx, *parentID)
		if err != nil {
			return nil, notFoundOr(err, "父评论不存在")
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: 不能对回复进行回复", ErrBadRequest)
		}
		if parent.VideoID != videoID {
			return nil, fmt.Errorf("%w: 父评论不属于该视频", ErrBadRequest)
		}
	}

	comment := &model.Comment{
		VideoID:  videoID,
		UserID:   userID,
		ParentID: parentID,
		Value:    value,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.FindByID(ctx, comment.ID)
}

func (s *commentService) Delete(ctx context.Context, userID, commentID uint64) error {
	deleted, err := s.commentRepo.DeleteByOwner(ctx, commentID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: 评论不存在", ErrNotFound)
	}
	return nil
}

// 获取评论：一页评论和评论总数并发查询，再批量补充回复数和反应
func (s *commentService) GetMany(ctx context.Context, videoID uint64, parentID *uint64, viewerID uint64, req pagination.Request) (*CommentPage, error) {
	if err := s.visibleVideo(ctx, videoID, viewerID); err != nil {
		return nil, err
	}

	var (
		comments []model.Comment
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = s.commentRepo.List(gctx, videoID, parentID, req)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.commentRepo.CountByVideo(gctx, videoID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items, err := s.enrich(ctx, comments, viewerID)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(items, req.Limit, func(it CommentItem) pagination.Cursor {
		return pagination.Cursor{ID: it.Comment.ID, T: it.Comment.UpdatedAt}
	})
	return &CommentPage{Page: page, TotalCount: total}, nil
}

func (s *commentService) enrich(ctx context.Context, comments []model.Comment, viewerID uint64) ([]CommentItem, error) {
	items := make([]CommentItem, 0, len(comments))
	if len(comments) == 0 {
		return items, nil
	}
	ids := make([]uint64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	replyCounts, err := s.commentRepo.ReplyCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	reactionCounts, err := s.reactionRepo.CommentReactionCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	var viewerReactions map[uint64]string
	if viewerID != 0 {
		if viewerReactions, err = s.reactionRepo.ViewerCommentReactions(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	for _, c := range comments {
		item := CommentItem{
			Comment:      c,
			ReplyCount:   replyCounts[c.ID],
			LikeCount:    reactionCounts[c.ID].Likes,
			DislikeCount: reactionCounts[c.ID].Dislikes,
		}
		if t, ok := viewerReactions[c.ID]; ok {
			t := t
			item.ViewerReaction = &t
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *commentService) React(ctx context.Context, userID, commentID uint64, reactionType string) (*string, error) {
	if !model.IsValidReaction(reactionType) {
		return nil, fmt.Errorf("%w: 未知的反应类型 %q", ErrBadRequest, reactionType)
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "评论不存在")
	}
	if err := s.visibleVideo(ctx, comment.VideoID, userID); err != nil {
		return nil, err
	}

	var result *string
	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		existing, err := repos.ReactionRepo.FindCommentReaction(ctx, userID, commentID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Type == reactionType {
			result = nil
			return repos.ReactionRepo.DeleteCommentReaction(ctx, userID, commentID)
		}
		result = &reactionType
		return repos.ReactionRepo.UpsertCommentReaction(ctx, &model.CommentReaction{
			CommentID: commentID,
			UserID:    userID,
			Type:      reactionType,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("更新评论反应失败: %w", err)
	}
	return result, nil
}
