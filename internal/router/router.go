package router

import (
	"net/http"
	"time"

	"Orion_Tube/internal/handler"
	"Orion_Tube/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Handlers 所有路由需要的处理器
type Handlers struct {
	User         handler.UserHandler
	Category     handler.CategoryHandler
	Video        handler.VideoHandler
	Studio       handler.StudioHandler
	Reaction     handler.ReactionHandler
	Comment      handler.CommentHandler
	Subscription handler.SubscriptionHandler
	Playlist     handler.PlaylistHandler
	Webhook      handler.WebhookHandler
}

type Options struct {
	CORSOrigins     []string
	Tokens          middleware.TokenValidator
	Redis           *redis.Client // 为nil时关闭限流
	RateLimit       int
	RateLimitWindow time.Duration
}

func SetupRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pang",
		})
	})

	// Mux回调不走限流和登录
	r.POST("/api/videos/webhook", h.Webhook.HandleMux)

	auth := middleware.AuthMiddleware(opts.Tokens)

	// 先做可选认证，限流才能按用户计数；需要登录的路由再挂auth
	apiV1 := r.Group("/api/v1")
	apiV1.Use(middleware.OptionalAuthMiddleware(opts.Tokens), middleware.RateLimit(opts.Redis, opts.RateLimit, opts.RateLimitWindow))
	{
		apiV1.GET("/categories", h.Category.List)

		userGroup := apiV1.Group("/users")
		{
			userGroup.POST("/register", h.User.Register)
			userGroup.POST("/login", h.User.Login)
			userGroup.GET("/:user_id", h.User.GetCreator)
			userGroup.POST("/:user_id/subscription", auth, h.Subscription.Subscribe)
			userGroup.DELETE("/:user_id/subscription", auth, h.Subscription.Unsubscribe)
		}
		apiV1.GET("/profile", auth, h.User.GetProfile)

		// 静态路径要先于/:video_id注册
		videoGroup := apiV1.Group("/videos")
		{
			videoGroup.GET("", h.Video.GetMany)
			videoGroup.GET("/trending", h.Video.GetTrending)
			videoGroup.GET("/subscribed", auth, h.Video.GetSubscribed)
			videoGroup.GET("/:video_id", h.Video.GetOne)
			videoGroup.GET("/:video_id/suggestions", h.Video.GetSuggestions)
			videoGroup.POST("/:video_id/views", auth, h.Video.RecordView)
			videoGroup.POST("/:video_id/reactions/like", auth, h.Reaction.LikeVideo)
			videoGroup.POST("/:video_id/reactions/dislike", auth, h.Reaction.DislikeVideo)
			videoGroup.GET("/:video_id/comments", h.Comment.GetMany)
			videoGroup.POST("/:video_id/comments", auth, h.Comment.Create)
		}

		commentGroup := apiV1.Group("/comments", auth)
		{
			commentGroup.DELETE("/:comment_id", h.Comment.Delete)
			commentGroup.POST("/:comment_id/reactions/like", h.Reaction.LikeComment)
			commentGroup.POST("/:comment_id/reactions/dislike", h.Reaction.DislikeComment)
		}

		studioGroup := apiV1.Group("/studio/videos", auth)
		{
			studioGroup.POST("", h.Studio.CreateUpload)
			studioGroup.GET("", h.Studio.List)
			studioGroup.GET("/:video_id", h.Studio.Get)
			studioGroup.PATCH("/:video_id", h.Studio.Update)
			studioGroup.DELETE("/:video_id", h.Studio.Delete)
			studioGroup.POST("/:video_id/thumbnail", h.Studio.UploadThumbnail)
			studioGroup.POST("/:video_id/thumbnail/restore", h.Studio.RestoreThumbnail)
		}

		playlistGroup := apiV1.Group("/playlists", auth)
		{
			playlistGroup.POST("", h.Playlist.Create)
			playlistGroup.GET("", h.Playlist.GetMany)
			playlistGroup.GET("/for-video/:video_id", h.Playlist.GetForVideo)
			playlistGroup.GET("/liked", h.Playlist.GetLiked)
			playlistGroup.GET("/history", h.Playlist.GetHistory)
			playlistGroup.GET("/:playlist_id", h.Playlist.GetOne)
			playlistGroup.DELETE("/:playlist_id", h.Playlist.Delete)
			playlistGroup.GET("/:playlist_id/videos", h.Playlist.GetVideos)
			playlistGroup.POST("/:playlist_id/videos/:video_id", h.Playlist.AddVideo)
			playlistGroup.DELETE("/:playlist_id/videos/:video_id", h.Playlist.RemoveVideo)
		}
	}

	return r
}
