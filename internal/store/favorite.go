package store

import (
	"context"

	"shanyrak/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteStore struct {
	db *gorm.DB
}

func NewFavoriteStore(db *gorm.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Create 在 (user_id, announcement_id) 已存在时不报错也不重复插入。
func (s *FavoriteStore) Create(ctx context.Context, f *models.Favorite) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "announcement_id"}},
		DoNothing: true,
	}).Create(f).Error
	return translate(err, "create favorite")
}

func (s *FavoriteStore) Get(ctx context.Context, userID, announcementID uint) (*models.Favorite, error) {
	var f models.Favorite
	err := s.db.WithContext(ctx).Where("user_id = ? AND announcement_id = ?", userID, announcementID).First(&f).Error
	if err != nil {
		return nil, translate(err, "get favorite")
	}
	return &f, nil
}

func (s *FavoriteStore) ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var out []models.Favorite
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&out).Error
	return out, translate(err, "list favorites")
}

// RefreshAddresses 用公告的当前地址覆盖用户收藏中保存的地址副本。
func (s *FavoriteStore) RefreshAddresses(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).
		Update("address", gorm.Expr("COALESCE((SELECT announcements.address FROM announcements WHERE announcements.id = favorites.announcement_id), favorites.address)")).
		Error
	return translate(err, "refresh favorite addresses")
}

func (s *FavoriteStore) Delete(ctx context.Context, userID, announcementID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND announcement_id = ?", userID, announcementID).Delete(&models.Favorite{})
	if res.Error != nil {
		return translate(res.Error, "delete favorite")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FavoriteStore) DeleteByUser(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Favorite{}).Error
	return translate(err, "delete favorites by user")
}

func (s *FavoriteStore) DeleteByAnnouncements(ctx context.Context, announcementIDs []uint) error {
	if len(announcementIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Where("announcement_id IN ?", announcementIDs).Delete(&models.Favorite{}).Error
	return translate(err, "delete favorites by announcement")
}
