package store

import (
	"context"
	"time"

	"shanyrak/internal/models"

	"gorm.io/gorm"
)

type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, "create comment")
}

// GetForAnnouncement 只有评论确实属于该公告时才返回。
func (s *CommentStore) GetForAnnouncement(ctx context.Context, commentID, announceID uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Where("id = ? AND announce_id = ?", commentID, announceID).First(&c).Error
	if err != nil {
		return nil, translate(err, "get comment")
	}
	return &c, nil
}

func (s *CommentStore) ListByAnnouncement(ctx context.Context, announceID uint) ([]models.Comment, error) {
	var out []models.Comment
	err := s.db.WithContext(ctx).Where("announce_id = ?", announceID).Order("id asc").Find(&out).Error
	return out, translate(err, "list comments")
}

func (s *CommentStore) CountByAnnouncement(ctx context.Context, announceID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("announce_id = ?", announceID).Count(&n).Error
	return n, translate(err, "count comments")
}

// UpdateContent 替换内容并把 created_at 重置为 at。
func (s *CommentStore) UpdateContent(ctx context.Context, id uint, content string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"content": content, "created_at": at})
	if res.Error != nil {
		return translate(res.Error, "update comment")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CommentStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CommentStore) DeleteByAnnouncements(ctx context.Context, announceIDs []uint) error {
	if len(announceIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Where("announce_id IN ?", announceIDs).Delete(&models.Comment{}).Error
	return translate(err, "delete comments by announcement")
}

func (s *CommentStore) DeleteByAuthor(ctx context.Context, authorID uint) error {
	err := s.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Comment{}).Error
	return translate(err, "delete comments by author")
}
