package service

import (
	"context"
	"errors"
	"strconv"

	"shanyrak/internal/auth"
	"shanyrak/internal/config"
	"shanyrak/internal/models"
	"shanyrak/internal/store"

	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 封装注册、登录与个人资料相关的业务逻辑。
type UserService struct {
	db     *gorm.DB
	stores *store.Stores
	codec  *auth.Codec
	cost   int
	feeds  FeedCloser
}

func NewUserService(db *gorm.DB, codec *auth.Codec, cfg config.Config, feeds FeedCloser) *UserService {
	if feeds == nil {
		feeds = noopFeedCloser{}
	}
	return &UserService{db: db, stores: store.New(db), codec: codec, cost: cfg.BcryptCost, feeds: feeds}
}

type RegisterInput struct {
	Username string
	Phone    string
	Password string
	Name     string
	City     string
}

// Register 注册新用户，用户名重复时返回 ErrUsernameTaken。
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	taken, err := s.stores.Users.UsernameTaken(ctx, in.Username)
	if err != nil {
		return err
	}
	if taken {
		return detail(ErrUsernameTaken, "username", in.Username, "this username is already taken")
	}
	hash, err := auth.HashPassword(in.Password, s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return detail(ErrPasswordTooLong, "password_bytes", len(in.Password), "password must be at most 72 bytes")
	}
	if err != nil {
		return err
	}
	var user models.User
	if err := copier.Copy(&user, &in); err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.stores.Users.Create(ctx, &user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return detail(ErrUsernameTaken, "username", in.Username, "this username is already taken")
		}
		return err
	}
	return nil
}

// LoginResult 登录成功后返回的数据。
type LoginResult struct {
	AccessToken string `json:"access_token"`
	UserID      uint   `json:"-"`
}

// Login 校验用户名密码并签发 token。
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.stores.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	at, err := s.codec.Encode(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: at, UserID: user.ID}, nil
}

// ProfileDTO 是对外输出的个人资料，id 以字符串形式返回。
type ProfileDTO struct {
	ID       string `json:"id" copier:"-"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	City     string `json:"city"`
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*ProfileDTO, error) {
	user, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, detail(ErrUnauthorized, "user_id", userID, "this user was not found")
		}
		return nil, err
	}
	var out ProfileDTO
	if err := copier.Copy(&out, user); err != nil {
		return nil, err
	}
	out.ID = strconv.FormatUint(uint64(user.ID), 10)
	return &out, nil
}

type ProfileUpdate struct {
	Phone string
	Name  string
	City  string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) error {
	err := s.stores.Users.UpdateProfile(ctx, userID, in.Phone, in.Name, in.City)
	if errors.Is(err, store.ErrNotFound) {
		return detail(ErrUnauthorized, "user_id", userID, "this user was not found")
	}
	return err
}

// Delete 在一个事务内删除用户及其名下的公告、评论和收藏，提交后关闭这些公告的评论流。
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	var ids []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		var err error
		ids, err = st.Announcements.IDsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if err := st.Favorites.DeleteByAnnouncements(ctx, ids); err != nil {
			return err
		}
		if err := st.Comments.DeleteByAnnouncements(ctx, ids); err != nil {
			return err
		}
		if err := st.Favorites.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := st.Comments.DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if err := st.Announcements.DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		err = st.Users.Delete(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return detail(ErrUnauthorized, "user_id", userID, "this user was not found")
		}
		return err
	})
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.feeds.CloseFeed(id)
	}
	return nil
}
