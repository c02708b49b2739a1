// Package store 提供四张业务表的数据访问，每个 Store 只操作一张表。
//
// Store 持有的 *gorm.DB 可以是事务句柄，service 层在事务回调中用 tx 构造
// 新的 Store，从而让"先查后改"的操作落在同一个事务里。
package store

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrNotFound = stderrors.New("record not found")

// Stores 聚合全部实体存储，便于在事务中整体切换到 tx。
type Stores struct {
	Users         *UserStore
	Announcements *AnnouncementStore
	Comments      *CommentStore
	Favorites     *FavoriteStore
}

func New(db *gorm.DB) *Stores {
	return &Stores{
		Users:         NewUserStore(db),
		Announcements: NewAnnouncementStore(db),
		Comments:      NewCommentStore(db),
		Favorites:     NewFavoriteStore(db),
	}
}

// translate 把 gorm 的未找到错误统一成 ErrNotFound，其余错误附带操作名。
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, op)
}
