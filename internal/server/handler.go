package server

import (
	"net/http"
	"strconv"
	"strings"

	"shanyrak/internal/auth"
	"shanyrak/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 聚合所有 HTTP handler，依赖注入 service 层。
type Handler struct {
	userSvc     *service.UserService
	announceSvc *service.AnnouncementService
	commentSvc  *service.CommentService
	favoriteSvc *service.FavoriteService
}

func NewHandler(userSvc *service.UserService, announceSvc *service.AnnouncementService, commentSvc *service.CommentService, favoriteSvc *service.FavoriteService) *Handler {
	return &Handler{userSvc: userSvc, announceSvc: announceSvc, commentSvc: commentSvc, favoriteSvc: favoriteSvc}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func idString(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// Register 处理用户注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=64"`
		Phone    string `json:"phone" binding:"max=32"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"max=128"`
		City     string `json:"city" binding:"max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		badRequest(c, "invalid username")
		return
	}
	// bcrypt 按字节计长，多字节字符会让 max 校验放过超长密码
	if len(req.Password) > auth.MaxPasswordBytes {
		badRequest(c, "password must be at most 72 bytes")
		return
	}
	err := h.userSvc.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		City:     req.City,
	})
	if err != nil {
		respondError(c, err, "register")
		return
	}
	c.Status(http.StatusOK)
}

// Login 接受表单或 JSON 格式的用户名和密码。
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	res, err := h.userSvc.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		respondError(c, err, "login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": res.AccessToken})
}

func (h *Handler) Profile(c *gin.Context) {
	p, err := h.userSvc.Profile(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"max=32"`
		Name  string `json:"name" binding:"max=128"`
		City  string `json:"city" binding:"max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	err := h.userSvc.UpdateProfile(c.Request.Context(), auth.GetUserID(c), service.ProfileUpdate{Phone: req.Phone, Name: req.Name, City: req.City})
	if err != nil {
		respondError(c, err, "update profile")
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.userSvc.Delete(c.Request.Context(), auth.GetUserID(c)); err != nil {
		respondError(c, err, "delete profile")
		return
	}
	c.Status(http.StatusOK)
}
