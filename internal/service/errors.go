package service

import (
	"errors"
	"fmt"
)

// 业务层通用错误，handler 可根据错误类型映射到合适的 HTTP 状态码。
var (
	ErrUsernameTaken        = errors.New("username taken")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrFavoriteNotFound     = errors.New("favorite not found")
	ErrForbidden            = errors.New("forbidden")
	ErrPasswordTooLong      = errors.New("password too long")
)

// DetailError 在哨兵错误之上附带出错的标识符和提示信息。
type DetailError struct {
	Err   error
	Key   string
	Value interface{}
	Msg   string
}

func (e *DetailError) Error() string {
	return fmt.Sprintf("%s: %s=%v", e.Err, e.Key, e.Value)
}

func (e *DetailError) Unwrap() error { return e.Err }

func detail(err error, key string, value interface{}, msg string) error {
	return &DetailError{Err: err, Key: key, Value: value, Msg: msg}
}

// IsNotFound 判断是否为任意一种资源不存在错误。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAnnouncementNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrFavoriteNotFound)
}
