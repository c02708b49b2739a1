package service

import (
	"context"
	"errors"

	"shanyrak/internal/models"
	"shanyrak/internal/store"

	"gorm.io/gorm"
)

// FavoriteService 封装用户收藏。
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// FavoriteDTO 中 id 为公告 id。
type FavoriteDTO struct {
	ID      uint   `json:"id"`
	Address string `json:"address"`
}

// Add 收藏公告并保存当前地址的副本，重复收藏不会产生新记录。
func (s *FavoriteService) Add(ctx context.Context, userID, announcementID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		a, err := loadAnnouncement(ctx, st, announcementID)
		if err != nil {
			return err
		}
		return st.Favorites.Create(ctx, &models.Favorite{UserID: userID, AnnouncementID: a.ID, Address: a.Address})
	})
}

// List 先用公告的最新地址刷新副本，再返回用户的全部收藏。
func (s *FavoriteService) List(ctx context.Context, userID uint) ([]FavoriteDTO, error) {
	var rows []models.Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		if err := st.Favorites.RefreshAddresses(ctx, userID); err != nil {
			return err
		}
		var err error
		rows, err = st.Favorites.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteDTO, 0, len(rows))
	for _, f := range rows {
		out = append(out, FavoriteDTO{ID: f.AnnouncementID, Address: f.Address})
	}
	return out, nil
}

// Remove 只在当前用户确实收藏过该公告时删除，否则返回 ErrFavoriteNotFound。
func (s *FavoriteService) Remove(ctx context.Context, userID, announcementID uint) error {
	err := store.NewFavoriteStore(s.db).Delete(ctx, userID, announcementID)
	if errors.Is(err, store.ErrNotFound) {
		return detail(ErrFavoriteNotFound, "id", announcementID, "this announcement is not in your favorites")
	}
	return err
}
