package service

import (
	"context"
	"errors"

	"shanyrak/internal/metrics"
	"shanyrak/internal/models"
	"shanyrak/internal/store"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// AnnouncementService 封装公告的增删改查与搜索。
type AnnouncementService struct {
	db     *gorm.DB
	stores *store.Stores
	feeds  FeedCloser
}

// FeedCloser 在公告删除后关闭其实时评论流，由 ws.Hub 实现。
type FeedCloser interface {
	CloseFeed(announcementID uint)
}

type noopFeedCloser struct{}

func (noopFeedCloser) CloseFeed(uint) {}

func NewAnnouncementService(db *gorm.DB, feeds FeedCloser) *AnnouncementService {
	if feeds == nil {
		feeds = noopFeedCloser{}
	}
	return &AnnouncementService{db: db, stores: store.New(db), feeds: feeds}
}

// AnnouncementInput 是创建和更新时可写的字段集合。
type AnnouncementInput struct {
	Type        string
	Price       int
	Address     string
	Area        string
	RoomsCount  int
	Description string
}

// AnnouncementDTO 是公告详情，附带评论总数。
type AnnouncementDTO struct {
	ID            uint   `json:"id"`
	Type          string `json:"type"`
	Price         int    `json:"price"`
	Address       string `json:"address"`
	Area          string `json:"area"`
	RoomsCount    int    `json:"rooms_count"`
	Description   string `json:"description"`
	OwnerID       uint   `json:"owner_id"`
	TotalComments int64  `json:"total_comments"`
}

// AnnouncementListItem 是搜索结果中的精简字段。
type AnnouncementListItem struct {
	ID         uint   `json:"id"`
	Type       string `json:"type"`
	Price      int    `json:"price"`
	Address    string `json:"address"`
	Area       string `json:"area"`
	RoomsCount int    `json:"rooms_count"`
}

type SearchResult struct {
	Total         int64                  `json:"total"`
	Announcements []AnnouncementListItem `json:"announcements"`
}

func (s *AnnouncementService) Create(ctx context.Context, ownerID uint, in AnnouncementInput) (uint, error) {
	a := models.Announcement{OwnerID: ownerID}
	if err := copier.Copy(&a, &in); err != nil {
		return 0, err
	}
	if err := s.stores.Announcements.Create(ctx, &a); err != nil {
		return 0, err
	}
	metrics.AnnouncementsCreated.Inc()
	return a.ID, nil
}

func (s *AnnouncementService) Get(ctx context.Context, id uint) (*AnnouncementDTO, error) {
	a, err := loadAnnouncement(ctx, s.stores, id)
	if err != nil {
		return nil, err
	}
	total, err := s.stores.Comments.CountByAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}
	var out AnnouncementDTO
	if err := copier.Copy(&out, a); err != nil {
		return nil, err
	}
	out.TotalComments = total
	return &out, nil
}

// Update 仅所有者可以修改，所有可变字段整体覆盖。
func (s *AnnouncementService) Update(ctx context.Context, userID, id uint, in AnnouncementInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		a, err := loadOwnedAnnouncement(ctx, st, id, userID)
		if err != nil {
			return err
		}
		if err := copier.Copy(a, &in); err != nil {
			return err
		}
		return st.Announcements.Update(ctx, a)
	})
}

// Delete 仅所有者可以删除，同时清理该公告下的评论和收藏，提交后关闭评论流。
func (s *AnnouncementService) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		if _, err := loadOwnedAnnouncement(ctx, st, id, userID); err != nil {
			return err
		}
		ids := []uint{id}
		if err := st.Comments.DeleteByAnnouncements(ctx, ids); err != nil {
			return err
		}
		if err := st.Favorites.DeleteByAnnouncements(ctx, ids); err != nil {
			return err
		}
		return st.Announcements.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.feeds.CloseFeed(id)
	return nil
}

// SearchQuery 中 Limit/Offset 为 nil 时使用默认值。
type SearchQuery struct {
	Limit      *int
	Offset     *int
	Type       *string
	RoomsCount *int
	PriceFrom  *int
	PriceUntil *int
}

func (s *AnnouncementService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	f := store.AnnouncementFilter{
		Type:       q.Type,
		RoomsCount: q.RoomsCount,
		PriceFrom:  q.PriceFrom,
		PriceUntil: q.PriceUntil,
		Limit:      DefaultSearchLimit,
	}
	if q.Limit != nil {
		f.Limit = *q.Limit
	}
	if f.Limit > MaxSearchLimit {
		f.Limit = MaxSearchLimit
	}
	if q.Offset != nil {
		f.Offset = *q.Offset
	}
	rows, total, err := s.stores.Announcements.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]AnnouncementListItem, len(rows))
	for i := range rows {
		if err := copier.Copy(&items[i], &rows[i]); err != nil {
			return nil, err
		}
	}
	return &SearchResult{Total: total, Announcements: items}, nil
}

// Exists 供实时评论流在升级连接前确认公告存在。
func (s *AnnouncementService) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := loadAnnouncement(ctx, s.stores, id)
	if errors.Is(err, ErrAnnouncementNotFound) {
		return false, nil
	}
	return err == nil, err
}
