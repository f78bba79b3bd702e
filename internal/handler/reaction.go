package handler

import (
	"context"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ReactionHandler interface {
	LikeVideo(c *gin.Context)
	DislikeVideo(c *gin.Context)
	LikeComment(c *gin.Context)
	DislikeComment(c *gin.Context)
}

type reactionHandler struct {
	VideoService   service.VideoService
	CommentService service.CommentService
}

func NewReactionHandler(videoService service.VideoService, commentService service.CommentService) ReactionHandler {
	return &reactionHandler{VideoService: videoService, CommentService: commentService}
}

type reactFunc func(ctx context.Context, userID, targetID uint64, reactionType string) (*string, error)

// 点赞/点踩：1、从URL获取目标ID 2、从认证后的context获取userID 3、执行反应切换，返回切换后的反应
func (h *reactionHandler) react(c *gin.Context, param, label, reactionType string, fn reactFunc) {
	targetID, ok := parseID(c, param, label)
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField(param, targetID).WithField("user_id", userID).WithField("type", reactionType)

	result, err := fn(c.Request.Context(), userID, targetID, reactionType)
	if err != nil {
		respondError(c, logCtx, err, "更新反应")
		return
	}
	logCtx.Info("反应已更新")
	sendOK(c, "操作成功", gin.H{"viewer_reaction": result})
}

func (h *reactionHandler) LikeVideo(c *gin.Context) {
	h.react(c, "video_id", "视频ID", model.ReactionLike, h.VideoService.React)
}

func (h *reactionHandler) DislikeVideo(c *gin.Context) {
	h.react(c, "video_id", "视频ID", model.ReactionDislike, h.VideoService.React)
}

func (h *reactionHandler) LikeComment(c *gin.Context) {
	h.react(c, "comment_id", "评论ID", model.ReactionLike, h.CommentService.React)
}

func (h *reactionHandler) DislikeComment(c *gin.Context) {
	h.react(c, "comment_id", "评论ID", model.ReactionDislike, h.CommentService.React)
}
