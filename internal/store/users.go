package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JocelynSullivan/VibeCycle/internal/model"

	"gorm.io/gorm"
)

// UserStore 提供用户凭据的增删查。
type UserStore struct {
	db *gorm.DB
}

// NewUserStore 创建 UserStore。
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByUsername 按用户名查找用户。查不到不算错误，返回 (nil, nil)。
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// List 返回全部用户。
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create 插入新用户。用户名已存在时返回 ErrConflict。
func (s *UserStore) Create(ctx context.Context, username, hashedPassword string) error {
	existing, err := s.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}

	user := model.User{Username: username, HashedPassword: hashedPassword}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// 并发注册时主键冲突由数据库兜底
		if isDuplicateEntry(err) {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// DeleteByUsername 删除指定用户。不存在时返回 ErrNotFound。
func (s *UserStore) DeleteByUsername(ctx context.Context, username string) error {
	res := s.db.WithContext(ctx).Where("username = ?", username).Delete(&model.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllWithEmptyUsername 清理用户名为空的脏数据。没有匹配行也算成功。
func (s *UserStore) DeleteAllWithEmptyUsername(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("COALESCE(username, '') = ''").
		Delete(&model.User{}).Error
	if err != nil {
		return fmt.Errorf("delete empty users: %w", err)
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
