package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Orion_Tube/internal/middleware"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse 定义了标准的API错误响应结构
type ErrorResponse struct {
	Error string `json:"error"`
}

// sendErrorResponse 是一个辅助函数，用于发送标准格式的错误响应
func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

// respondError 按service层的错误类型决定状态码，未知错误一律500且不暴露细节
func respondError(c *gin.Context, logCtx *logrus.Entry, err error, action string) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		code = http.StatusServiceUnavailable
	}

	if code == http.StatusInternalServerError {
		logCtx.WithError(err).Error(action + "失败")
		sendErrorResponse(c, code, action+"失败")
		return
	}
	logCtx.WithError(err).Warn(action + "失败")
	sendErrorResponse(c, code, err.Error())
}

// parseID 解析路径参数里的ID，失败时直接写400
func parseID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(c, http.StatusBadRequest, "无效的"+label)
		return 0, false
	}
	return id, true
}

// pageRequest 解析?limit=&cursor=
func pageRequest(c *gin.Context) (pagination.Request, bool) {
	req, err := pagination.ParseRequest(c.Query("limit"), c.Query("cursor"))
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, err.Error())
		return pagination.Request{}, false
	}
	return req, true
}

// mustUserID 需要登录的接口里取当前用户，AuthMiddleware保证存在
func mustUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		sendErrorResponse(c, http.StatusUnauthorized, "用户未认证")
		return 0, false
	}
	return userID, true
}

// viewerID 可选登录的接口里取当前用户，未登录为0
func viewerID(c *gin.Context) uint64 {
	userID, _ := middleware.CurrentUserID(c)
	return userID
}

func sendOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}
