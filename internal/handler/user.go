package handler

import (
	"net/http"

	"Orion_Tube/internal/dto"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	GetProfile(c *gin.Context)
	GetCreator(c *gin.Context)
}

// 对Service进行封装
type userHandler struct {
	UserService service.UserService
}

// 封装函数
func NewUserHandler(userService service.UserService) UserHandler {
	return &userHandler{UserService: userService}
}

// 用处：接收http发来的全部注册信息，用户名+密码
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
	ImageURL string `json:"image_url"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// 注册：1、请求体解析为注册请求结构体 2、service层注册 3、返回注册成功后的User
func (h *userHandler) Register(c *gin.Context) {
	var req RegisterRequest
	// c.ShouldBindJSON，绑定和校验，如果context中不包含req的“required”字段，则会返回错误
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Warn("请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("username", req.Username)
	logCtx.Info("开始处理用户注册请求")

	user, err := h.UserService.Register(c.Request.Context(), req.Username, req.Password, req.ImageURL)
	if err != nil {
		respondError(c, logCtx, err, "用户注册")
		return
	}

	logCtx.WithField("user_id", user.ID).Info("用户注册成功")
	sendOK(c, "注册成功", dto.ToUserResponse(user))
}

// 登录：1、请求体解析为登录结构体 2、Username和Password传给service层 3、成功则返回token
func (h *userHandler) Login(c *gin.Context) {
	var login LoginRequest
	if err := c.ShouldBindJSON(&login); err != nil {
		logger.Log.WithError(err).Warn("登录请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("username", login.Username)
	logCtx.Info("开始处理用户登录请求")

	token, err := h.UserService.Login(c.Request.Context(), login.Username, login.Password)
	if err != nil {
		respondError(c, logCtx, err, "用户登录")
		return
	}

	logCtx.Info("用户登录成功")
	sendOK(c, "登录成功", gin.H{"token": token})
}

// 获取用户个人信息：从认证后的context取userID
func (h *userHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("user_id", userID)

	user, err := h.UserService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logCtx, err, "获取用户信息")
		return
	}
	sendOK(c, "成功获取用户信息", dto.ToUserResponse(user))
}

func (h *userHandler) GetCreator(c *gin.Context) {
	creatorID, ok := parseID(c, "user_id", "用户ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("creator_id", creatorID)

	profile, err := h.UserService.GetCreator(c.Request.Context(), creatorID, viewerID(c))
	if err != nil {
		respondError(c, logCtx, err, "获取创作者信息")
		return
	}
	sendOK(c, "成功获取创作者信息", dto.ToCreatorResponse(profile))
}
