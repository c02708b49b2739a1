package service

import (
	"context"
	"errors"

	"shanyrak/internal/models"
	"shanyrak/internal/store"
)

// loadAnnouncement 查不到时返回带 id 的 ErrAnnouncementNotFound。
func loadAnnouncement(ctx context.Context, st *store.Stores, id uint) (*models.Announcement, error) {
	a, err := st.Announcements.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, detail(ErrAnnouncementNotFound, "id", id, "announcement not found")
	}
	return a, err
}

// loadOwnedAnnouncement 先确认公告存在，再确认 userID 是其所有者。
func loadOwnedAnnouncement(ctx context.Context, st *store.Stores, id, userID uint) (*models.Announcement, error) {
	a, err := loadAnnouncement(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != userID {
		return nil, detail(ErrForbidden, "user_id", userID, "only the owner can change this announcement")
	}
	return a, nil
}

// loadComment 同时校验公告和 (comment_id, announce_id) 组合是否存在。
func loadComment(ctx context.Context, st *store.Stores, announcementID, commentID uint) (*models.Announcement, *models.Comment, error) {
	a, err := loadAnnouncement(ctx, st, announcementID)
	if err != nil {
		return nil, nil, err
	}
	c, err := st.Comments.GetForAnnouncement(ctx, commentID, announcementID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, detail(ErrCommentNotFound, "comment_id", commentID, "comment not found")
	}
	if err != nil {
		return nil, nil, err
	}
	return a, c, nil
}
