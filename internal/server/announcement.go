package server

import (
	"net/http"
	"strconv"

	"shanyrak/internal/auth"
	"shanyrak/internal/service"

	"github.com/gin-gonic/gin"
)

type announcementRequest struct {
	Type        string `json:"type" binding:"required,max=32"`
	Price       int    `json:"price" binding:"min=0"`
	Address     string `json:"address" binding:"required,max=255"`
	Area        string `json:"area" binding:"max=64"`
	RoomsCount  int    `json:"rooms_count" binding:"min=0"`
	Description string `json:"description"`
}

func (r announcementRequest) input() service.AnnouncementInput {
	return service.AnnouncementInput(r)
}

func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	id, err := h.announceSvc.Create(c.Request.Context(), auth.GetUserID(c), req.input())
	if err != nil {
		respondError(c, err, "create announcement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": idString(id)})
}

func (h *Handler) GetAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.announceSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get announcement")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := h.announceSvc.Update(c.Request.Context(), auth.GetUserID(c), id, req.input()); err != nil {
		respondError(c, err, "update announcement")
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.announceSvc.Delete(c.Request.Context(), auth.GetUserID(c), id); err != nil {
		respondError(c, err, "delete announcement")
		return
	}
	c.Status(http.StatusOK)
}

// queryInt 解析可选的非负整数查询参数，缺省时返回 nil。
func queryInt(c *gin.Context, name string) (*int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}

// SearchAnnouncements 支持 limit/offset 分页以及 type/rooms_count/price_from/price_until 过滤。
func (h *Handler) SearchAnnouncements(c *gin.Context) {
	var q service.SearchQuery
	var ok bool
	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"limit", &q.Limit},
		{"offset", &q.Offset},
		{"rooms_count", &q.RoomsCount},
		{"price_from", &q.PriceFrom},
		{"price_until", &q.PriceUntil},
	} {
		if *p.dst, ok = queryInt(c, p.name); !ok {
			return
		}
	}
	typ := c.Query("_type")
	if typ == "" {
		typ = c.Query("type")
	}
	if typ != "" {
		q.Type = &typ
	}
	res, err := h.announceSvc.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "search announcements")
		return
	}
	c.JSON(http.StatusOK, res)
}
