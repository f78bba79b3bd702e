package handler

import (
	"net/http"
	"strconv"

	"Orion_Tube/internal/dto"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CommentHandler interface {
	Create(c *gin.Context)
	Delete(c *gin.Context)
	GetMany(c *gin.Context)
}

type commentHandler struct {
	CommentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) CommentHandler {
	return &commentHandler{CommentService: commentService}
}

// 带parent_id即为回复
type CreateCommentRequest struct {
	Value    string  `json:"value" binding:"required"`
	ParentID *uint64 `json:"parent_id"`
}

// 视频评论：1、解析URL中的videoID 2、解析Body 3、获取context中的userID 4、创建评论并返回
func (h *commentHandler) Create(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Warn("评论参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数") // 400
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	// 正式进入业务前，将logger格式整理好
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)
	if req.ParentID != nil {
		logCtx = logCtx.WithField("parent_id", *req.ParentID)
	}
	logCtx.Info("开始创建评论")

	comment, err := h.CommentService.Create(c.Request.Context(), userID, videoID, req.ParentID, req.Value)
	if err != nil {
		respondError(c, logCtx, err, "创建评论")
		return
	}
	// 业务成功，打上返回的comment的ID
	logCtx.WithField("comment_id", comment.ID).Info("评论创建成功")
	c.JSON(http.StatusCreated, gin.H{ //201
		"message": "评论成功",
		"data":    dto.ToCommentResponse(comment),
	})
}

func (h *commentHandler) Delete(c *gin.Context) {
	commentID, ok := parseID(c, "comment_id", "评论ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID).WithField("comment_id", commentID)

	if err := h.CommentService.Delete(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, logCtx, err, "删除评论")
		return
	}
	logCtx.Info("评论已删除")
	sendOK(c, "评论已删除", nil)
}

// 获取评论列表：不带parent_id为一级评论，带parent_id为该评论的回复
func (h *commentHandler) GetMany(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	var parentID *uint64
	if raw := c.Query("parent_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			sendErrorResponse(c, http.StatusBadRequest, "无效的父评论ID")
			return
		}
		parentID = &id
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("video_id", videoID)

	page, err := h.CommentService.GetMany(c.Request.Context(), videoID, parentID, viewerID(c), req)
	if err != nil {
		respondError(c, logCtx, err, "获取评论列表")
		return
	}
	sendOK(c, "获取评论列表成功", dto.ToCommentPageResponse(page))
}
