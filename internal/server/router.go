package server

import (
	"net/http"

	"shanyrak/internal/auth"
	"shanyrak/internal/config"
	clog "shanyrak/internal/log"
	"shanyrak/internal/metrics"
	"shanyrak/internal/mw"
	"shanyrak/internal/service"
	"shanyrak/internal/store"
	"shanyrak/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter 统一初始化 Gin 中间件、REST API 以及实时评论流端点。
func SetupRouter(cfg config.Config, db *gorm.DB, hub *ws.Hub) *gin.Engine {
	codec := auth.NewCodec(cfg.JWTSecret)
	announceSvc := service.NewAnnouncementService(db, hub)
	h := NewHandler(
		service.NewUserService(db, codec, cfg, hub),
		announceSvc,
		service.NewCommentService(db, hub),
		service.NewFavoriteService(db),
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RequestID())
	r.Use(clog.GinLogger(mw.GetRequestID))
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env, cfg.CORSAllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := auth.AuthMiddleware(codec, store.NewUserStore(db))

	users := r.Group("/auth/users")
	users.POST("/", h.Register)
	users.POST("/login", h.Login)

	me := users.Group("", requireAuth)
	me.GET("/me", h.Profile)
	me.PATCH("/me", h.UpdateProfile)
	me.DELETE("/me", h.DeleteProfile)
	me.POST("/favorites/shanyraks/:id", h.AddFavorite)
	me.GET("/favorites/shanyraks", h.ListFavorites)
	me.DELETE("/favorites/shanyraks/:id", h.RemoveFavorite)

	r.GET("/shanyraks", h.SearchAnnouncements)
	r.GET("/shanyraks/:id", h.GetAnnouncement)
	r.GET("/shanyraks/:id/comments", h.ListComments)
	r.GET("/shanyraks/:id/comments/ws", ws.Serve(hub, announceSvc))

	shanyraks := r.Group("/shanyraks", requireAuth)
	shanyraks.POST("/", h.CreateAnnouncement)
	shanyraks.PATCH("/:id", h.UpdateAnnouncement)
	shanyraks.DELETE("/:id", h.DeleteAnnouncement)
	shanyraks.POST("/:id/comments", h.CreateComment)
	shanyraks.PATCH("/:id/comments/:comment_id", h.UpdateComment)
	shanyraks.DELETE("/:id/comments/:comment_id", h.DeleteComment)

	return r
}
