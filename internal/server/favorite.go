package server

import (
	"net/http"

	"shanyrak/internal/auth"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddFavorite(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteSvc.Add(c.Request.Context(), auth.GetUserID(c), id); err != nil {
		respondError(c, err, "add favorite")
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ListFavorites(c *gin.Context) {
	favs, err := h.favoriteSvc.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shanyraks": favs})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteSvc.Remove(c.Request.Context(), auth.GetUserID(c), id); err != nil {
		respondError(c, err, "remove favorite")
		return
	}
	c.Status(http.StatusOK)
}
