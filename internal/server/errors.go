package server

import (
	"errors"
	"net/http"

	"shanyrak/internal/mw"
	"shanyrak/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case service.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError 把业务错误映射为状态码与 {"error", "detail"} 响应体，未知错误记录日志后返回 500。
func respondError(c *gin.Context, err error, op string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", mw.GetRequestID(c)).Msg(op)
		c.JSON(status, gin.H{"error": op + " failed"})
		return
	}
	body := gin.H{"error": err.Error()}
	var de *service.DetailError
	if errors.As(err, &de) {
		body["error"] = de.Err.Error()
		body["detail"] = gin.H{de.Key: de.Value, "msg": de.Msg}
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
