package handler

import (
	"context"
	"net/http"

	"Orion_Tube/internal/dto"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PlaylistHandler interface {
	Create(c *gin.Context)
	GetMany(c *gin.Context)
	GetForVideo(c *gin.Context)
	GetLiked(c *gin.Context)
	GetHistory(c *gin.Context)
	GetOne(c *gin.Context)
	GetVideos(c *gin.Context)
	AddVideo(c *gin.Context)
	RemoveVideo(c *gin.Context)
	Delete(c *gin.Context)
}

type playlistHandler struct {
	PlaylistService service.PlaylistService
}

func NewPlaylistHandler(playlistService service.PlaylistService) PlaylistHandler {
	return &playlistHandler{PlaylistService: playlistService}
}

type CreatePlaylistRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
}

func (h *playlistHandler) Create(c *gin.Context) {
	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Warn("播放列表参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID)

	playlist, err := h.PlaylistService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, logCtx, err, "创建播放列表")
		return
	}
	logCtx.WithField("playlist_id", playlist.ID).Info("播放列表创建成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "播放列表创建成功",
		"data":    dto.ToPlaylistResponse(playlist),
	})
}

func (h *playlistHandler) GetMany(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.PlaylistService.GetMany(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger.Log.WithField("user_id", userID), err, "获取播放列表")
		return
	}
	sendOK(c, "成功获取播放列表", dto.ToPlaylistPage(page))
}

// 添加到播放列表的弹窗用：每个列表带contains_video
func (h *playlistHandler) GetForVideo(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	items, err := h.PlaylistService.GetForVideo(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, logger.Log.WithField("user_id", userID).WithField("video_id", videoID), err, "获取播放列表")
		return
	}
	sendOK(c, "成功获取播放列表", dto.ToPlaylistsForVideo(items))
}

func (h *playlistHandler) GetLiked(c *gin.Context) {
	h.userVideos(c, "获取点赞视频", h.PlaylistService.GetLiked)
}

func (h *playlistHandler) GetHistory(c *gin.Context) {
	h.userVideos(c, "获取观看历史", h.PlaylistService.GetHistory)
}

func (h *playlistHandler) GetOne(c *gin.Context) {
	userID, playlistID, ok := ownerAndPlaylist(c)
	if !ok {
		return
	}
	item, err := h.PlaylistService.GetOne(c.Request.Context(), userID, playlistID)
	if err != nil {
		respondError(c, playlistLog(userID, playlistID), err, "获取播放列表")
		return
	}
	sendOK(c, "成功获取播放列表", dto.ToPlaylistItemResponse(*item))
}

func (h *playlistHandler) GetVideos(c *gin.Context) {
	userID, playlistID, ok := ownerAndPlaylist(c)
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.PlaylistService.GetVideos(c.Request.Context(), userID, playlistID, req)
	if err != nil {
		respondError(c, playlistLog(userID, playlistID), err, "获取播放列表视频")
		return
	}
	sendOK(c, "成功获取播放列表视频", dto.ToVideoPage(page))
}

func (h *playlistHandler) AddVideo(c *gin.Context) {
	userID, playlistID, ok := ownerAndPlaylist(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	logCtx := playlistLog(userID, playlistID).WithField("video_id", videoID)

	if err := h.PlaylistService.AddVideo(c.Request.Context(), userID, playlistID, videoID); err != nil {
		respondError(c, logCtx, err, "添加视频")
		return
	}
	logCtx.Info("视频已添加到播放列表")
	sendOK(c, "视频已添加", nil)
}

func (h *playlistHandler) RemoveVideo(c *gin.Context) {
	userID, playlistID, ok := ownerAndPlaylist(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	logCtx := playlistLog(userID, playlistID).WithField("video_id", videoID)

	if err := h.PlaylistService.RemoveVideo(c.Request.Context(), userID, playlistID, videoID); err != nil {
		respondError(c, logCtx, err, "移除视频")
		return
	}
	logCtx.Info("视频已从播放列表移除")
	sendOK(c, "视频已移除", nil)
}

func (h *playlistHandler) Delete(c *gin.Context) {
	userID, playlistID, ok := ownerAndPlaylist(c)
	if !ok {
		return
	}
	logCtx := playlistLog(userID, playlistID)
	if err := h.PlaylistService.Delete(c.Request.Context(), userID, playlistID); err != nil {
		respondError(c, logCtx, err, "删除播放列表")
		return
	}
	logCtx.Info("播放列表已删除")
	sendOK(c, "播放列表已删除", nil)
}

type userVideosFunc func(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[service.VideoItem], error)

func (h *playlistHandler) userVideos(c *gin.Context, action string, fn userVideosFunc) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := fn(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger.Log.WithField("user_id", userID), err, action)
		return
	}
	sendOK(c, action+"成功", dto.ToVideoPage(page))
}

func ownerAndPlaylist(c *gin.Context) (uint64, uint64, bool) {
	playlistID, ok := parseID(c, "playlist_id", "播放列表ID")
	if !ok {
		return 0, 0, false
	}
	userID, ok := mustUserID(c)
	if !ok {
		return 0, 0, false
	}
	return userID, playlistID, true
}

func playlistLog(userID, playlistID uint64) *logrus.Entry {
	return logger.Log.WithField("user_id", userID).WithField("playlist_id", playlistID)
}
