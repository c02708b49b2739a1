package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Phone        string `gorm:"size:32"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"size:128"`
	City         string `gorm:"size:128"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Announcements []Announcement `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Comments      []Comment      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Favorites     []Favorite     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Announcement 即 "shanyrak"，一条房源公告。
type Announcement struct {
	ID          uint   `gorm:"primaryKey"`
	Type        string `gorm:"size:32;index"`
	Price       int    `gorm:"index"`
	Address     string `gorm:"size:255"`
	Area        string `gorm:"size:64"`
	RoomsCount  int    `gorm:"index"`
	Description string `gorm:"type:text"`
	OwnerID     uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Comments  []Comment  `gorm:"foreignKey:AnnounceID;constraint:OnDelete:CASCADE"`
	Favorites []Favorite `gorm:"foreignKey:AnnouncementID;constraint:OnDelete:CASCADE"`
}

// Comment 的 CreatedAt 在更新时会被重新打上时间戳，因此不使用 gorm 的自动时间字段。
type Comment struct {
	ID         uint      `gorm:"primaryKey"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false"`
	AuthorID   uint      `gorm:"index;not null"`
	AnnounceID uint      `gorm:"index:idx_comment_announce_id;not null"`
}

// Favorite.Address 是公告地址的冗余副本，读取时会被刷新。
type Favorite struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"uniqueIndex:idx_fav_user_announcement;not null"`
	AnnouncementID uint   `gorm:"uniqueIndex:idx_fav_user_announcement;index;not null"`
	Address        string `gorm:"size:255"`
	CreatedAt      time.Time
}
