package handler

import (
	"net/http"

	"Orion_Tube/internal/dto"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StudioHandler interface {
	CreateUpload(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadThumbnail(c *gin.Context)
	RestoreThumbnail(c *gin.Context)
}

type studioHandler struct {
	StudioService service.StudioService
}

func NewStudioHandler(studioService service.StudioService) StudioHandler {
	return &studioHandler{StudioService: studioService}
}

// 字段为空表示不修改
type UpdateVideoRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	CategoryID  *uint64 `json:"category_id"`
	Visibility  *string `json:"visibility"`
}

// 创建上传：返回新视频和浏览器直传Mux的地址
func (h *studioHandler) CreateUpload(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	// 蛇形命名法（日志聚合平台ELK、前端JavaScript）
	logCtx := logger.Log.WithField("user_id", userID)
	logCtx.Info("开始处理创建上传请求")

	result, err := h.StudioService.CreateUpload(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logCtx, err, "创建上传")
		return
	}
	// 没有赋值，临时追加上下文，避免污染后续其他日志
	logCtx.WithField("video_id", result.Video.ID).Info("上传已创建")

	c.JSON(http.StatusCreated, gin.H{ // 使用201 Created状态码，更符合RESTful规范
		"message": "上传已创建",
		"data":    dto.ToUploadResponse(result),
	})
}

func (h *studioHandler) List(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.StudioService.List(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger.Log.WithField("user_id", userID), err, "获取工作室视频")
		return
	}
	sendOK(c, "成功获取工作室视频", dto.ToVideoPage(page))
}

func (h *studioHandler) Get(c *gin.Context) {
	userID, videoID, ok := ownerAndVideo(c)
	if !ok {
		return
	}
	video, err := h.StudioService.Get(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, studioLog(userID, videoID), err, "获取视频")
		return
	}
	sendOK(c, "成功获取视频", dto.ToStudioVideoResponse(video))
}

func (h *studioHandler) Update(c *gin.Context) {
	userID, videoID, ok := ownerAndVideo(c)
	if !ok {
		return
	}
	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Warn("更新视频参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}
	logCtx := studioLog(userID, videoID)

	video, err := h.StudioService.Update(c.Request.Context(), userID, videoID, service.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Visibility:  req.Visibility,
	})
	if err != nil {
		respondError(c, logCtx, err, "更新视频")
		return
	}
	logCtx.Info("视频已更新")
	sendOK(c, "视频已更新", dto.ToStudioVideoResponse(video))
}

func (h *studioHandler) Delete(c *gin.Context) {
	userID, videoID, ok := ownerAndVideo(c)
	if !ok {
		return
	}
	logCtx := studioLog(userID, videoID)
	if err := h.StudioService.Delete(c.Request.Context(), userID, videoID); err != nil {
		respondError(c, logCtx, err, "删除视频")
		return
	}
	logCtx.Info("视频已删除")
	sendOK(c, "视频已删除", nil)
}

// 上传封面：multipart表单的file字段
func (h *studioHandler) UploadThumbnail(c *gin.Context) {
	userID, videoID, ok := ownerAndVideo(c)
	if !ok {
		return
	}
	logCtx := studioLog(userID, videoID)

	header, err := c.FormFile("file")
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "缺少封面文件")
		return
	}
	if header.Size > service.MaxThumbnailSize {
		sendErrorResponse(c, http.StatusBadRequest, "封面大小不能超过4MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, logCtx, err, "读取封面")
		return
	}
	defer file.Close()

	video, err := h.StudioService.UploadThumbnail(c.Request.Context(), userID, videoID, service.ThumbnailFile{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	})
	if err != nil {
		respondError(c, logCtx, err, "上传封面")
		return
	}
	logCtx.Info("封面已更新")
	sendOK(c, "封面已更新", dto.ToStudioVideoResponse(video))
}

func (h *studioHandler) RestoreThumbnail(c *gin.Context) {
	userID, videoID, ok := ownerAndVideo(c)
	if !ok {
		return
	}
	logCtx := studioLog(userID, videoID)
	video, err := h.StudioService.RestoreThumbnail(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, logCtx, err, "恢复封面")
		return
	}
	sendOK(c, "封面已恢复", dto.ToStudioVideoResponse(video))
}

func ownerAndVideo(c *gin.Context) (uint64, uint64, bool) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return 0, 0, false
	}
	userID, ok := mustUserID(c)
	if !ok {
		return 0, 0, false
	}
	return userID, videoID, true
}

func studioLog(userID, videoID uint64) *logrus.Entry {
	return logger.Log.WithField("user_id", userID).WithField("video_id", videoID)
}
