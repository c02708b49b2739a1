package server

import (
	"net/http"

	"shanyrak/internal/auth"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content" binding:"required,max=4096"`
}

func (h *Handler) CreateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	cid, err := h.commentSvc.Create(c.Request.Context(), auth.GetUserID(c), id, req.Content)
	if err != nil {
		respondError(c, err, "create comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": idString(cid)})
}

func (h *Handler) ListComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	comments, err := h.commentSvc.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "list comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cid, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := h.commentSvc.Update(c.Request.Context(), auth.GetUserID(c), id, cid, req.Content); err != nil {
		respondError(c, err, "update comment")
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cid, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	if err := h.commentSvc.Delete(c.Request.Context(), auth.GetUserID(c), id, cid); err != nil {
		respondError(c, err, "delete comment")
		return
	}
	c.Status(http.StatusOK)
}
