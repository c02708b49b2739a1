package service

import (
	"context"
	"errors"
	"time"

	"shanyrak/internal/metrics"
	"shanyrak/internal/models"
	"shanyrak/internal/store"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// 评论事件类型，会被推送到公告的实时评论流。
const (
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
)

// Notifier 接收已提交的评论变更，由 ws.Hub 实现。
type Notifier interface {
	Publish(announcementID uint, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(uint, string, interface{}) {}

// CommentService 封装评论的增删改查与作者/所有者校验。
type CommentService struct {
	db       *gorm.DB
	stores   *store.Stores
	notifier Notifier
	now      func() time.Time
}

func NewCommentService(db *gorm.DB, notifier Notifier) *CommentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CommentService{db: db, stores: store.New(db), notifier: notifier, now: time.Now}
}

// CommentDTO 是对外输出的评论，created_at 为 RFC3339 字符串。
type CommentDTO struct {
	ID        uint   `json:"id"`
	Content   string `json:"content"`
	AuthorID  uint   `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

var timeToString = copier.TypeConverter{
	SrcType: time.Time{},
	DstType: copier.String,
	Fn: func(src interface{}) (interface{}, error) {
		t, ok := src.(time.Time)
		if !ok {
			return nil, errors.New("copier: expected time.Time")
		}
		return t.UTC().Format(time.RFC3339), nil
	},
}

func toCommentDTO(c *models.Comment) (CommentDTO, error) {
	var out CommentDTO
	err := copier.CopyWithOption(&out, c, copier.Option{Converters: []copier.TypeConverter{timeToString}})
	return out, err
}

func (s *CommentService) Create(ctx context.Context, userID, announcementID uint, content string) (uint, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		if _, err := loadAnnouncement(ctx, st, announcementID); err != nil {
			return err
		}
		c = models.Comment{Content: content, AuthorID: userID, AnnounceID: announcementID, CreatedAt: s.now().UTC()}
		return st.Comments.Create(ctx, &c)
	})
	if err != nil {
		return 0, err
	}
	s.publish(EventCommentCreated, &c)
	return c.ID, nil
}

func (s *CommentService) List(ctx context.Context, announcementID uint) ([]CommentDTO, error) {
	if _, err := loadAnnouncement(ctx, s.stores, announcementID); err != nil {
		return nil, err
	}
	rows, err := s.stores.Comments.ListByAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	out := make([]CommentDTO, 0, len(rows))
	for i := range rows {
		dto, err := toCommentDTO(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// Update 只有作者可以修改，created_at 会被重置为修改时间。
func (s *CommentService) Update(ctx context.Context, userID, announcementID, commentID uint, content string) error {
	var c *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		var err error
		_, c, err = loadComment(ctx, st, announcementID, commentID)
		if err != nil {
			return err
		}
		if c.AuthorID != userID {
			return detail(ErrForbidden, "user_id", userID, "only the author can update this comment")
		}
		c.Content = content
		c.CreatedAt = s.now().UTC()
		return st.Comments.UpdateContent(ctx, c.ID, c.Content, c.CreatedAt)
	})
	if err != nil {
		return err
	}
	s.publish(EventCommentUpdated, c)
	return nil
}

// Delete 评论作者或公告所有者都可以删除。
func (s *CommentService) Delete(ctx context.Context, userID, announcementID, commentID uint) error {
	var c *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		a, cm, err := loadComment(ctx, st, announcementID, commentID)
		if err != nil {
			return err
		}
		if cm.AuthorID != userID && a.OwnerID != userID {
			return detail(ErrForbidden, "user_id", userID, "only the author or the announcement owner can delete this comment")
		}
		c = cm
		return st.Comments.Delete(ctx, cm.ID)
	})
	if err != nil {
		return err
	}
	s.publish(EventCommentDeleted, c)
	return nil
}

func (s *CommentService) publish(eventType string, c *models.Comment) {
	metrics.CommentsTotal.WithLabelValues(eventType).Inc()
	dto, err := toCommentDTO(c)
	if err != nil {
		return
	}
	s.notifier.Publish(c.AnnounceID, eventType, dto)
}
