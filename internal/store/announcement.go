package store

import (
	"context"

	"shanyrak/internal/models"

	"gorm.io/gorm"
)

// AnnouncementFilter 描述搜索条件，nil 字段表示不参与过滤。
type AnnouncementFilter struct {
	Type       *string
	RoomsCount *int
	PriceFrom  *int
	PriceUntil *int
	Limit      int
	Offset     int
}

func (f AnnouncementFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.RoomsCount != nil {
		db = db.Where("rooms_count = ?", *f.RoomsCount)
	}
	if f.PriceFrom != nil {
		db = db.Where("price >= ?", *f.PriceFrom)
	}
	if f.PriceUntil != nil {
		db = db.Where("price <= ?", *f.PriceUntil)
	}
	return db
}

type AnnouncementStore struct {
	db *gorm.DB
}

func NewAnnouncementStore(db *gorm.DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

func (s *AnnouncementStore) Create(ctx context.Context, a *models.Announcement) error {
	return translate(s.db.WithContext(ctx).Create(a).Error, "create announcement")
}

func (s *AnnouncementStore) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, "get announcement")
	}
	return &a, nil
}

// Update 覆盖全部可变字段，零值也会被写入。
func (s *AnnouncementStore) Update(ctx context.Context, a *models.Announcement) error {
	res := s.db.WithContext(ctx).Model(&models.Announcement{ID: a.ID}).
		Select("type", "price", "address", "area", "rooms_count", "description").
		Updates(a)
	if res.Error != nil {
		return translate(res.Error, "update announcement")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AnnouncementStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete announcement")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AnnouncementStore) IDsByOwner(ctx context.Context, ownerID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Announcement{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, translate(err, "list announcement ids")
}

func (s *AnnouncementStore) DeleteByOwner(ctx context.Context, ownerID uint) error {
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Announcement{}).Error
	return translate(err, "delete announcements by owner")
}

// Search 返回按 id 倒序分页后的结果，以及分页前满足条件的总数。
func (s *AnnouncementStore) Search(ctx context.Context, f AnnouncementFilter) ([]models.Announcement, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Announcement{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count announcements")
	}
	var out []models.Announcement
	err := s.db.WithContext(ctx).Scopes(f.scope).
		Order("id desc").Offset(f.Offset).Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err, "search announcements")
	}
	return out, total, nil
}
