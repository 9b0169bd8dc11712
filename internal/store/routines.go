package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JocelynSullivan/VibeCycle/internal/model"

	"gorm.io/gorm"
)

// RoutineStore 提供按归属过滤的例程快照存取。
type RoutineStore struct {
	db *gorm.DB
}

// NewRoutineStore 创建 RoutineStore。
func NewRoutineStore(db *gorm.DB) *RoutineStore {
	return &RoutineStore{db: db}
}

// Create 保存一份新的例程快照，ID 由数据库分配。
func (s *RoutineStore) Create(ctx context.Context, owner string, title *string, content string) (*model.SavedRoutine, error) {
	routine := model.SavedRoutine{
		Owner:   owner,
		Title:   title,
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(&routine).Error; err != nil {
		return nil, fmt.Errorf("create routine: %w", err)
	}
	return &routine, nil
}

// ListByOwner 返回指定用户保存的全部例程。
func (s *RoutineStore) ListByOwner(ctx context.Context, owner string) ([]model.SavedRoutine, error) {
	routines := []model.SavedRoutine{}
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

// GetByIDForOwner 取 owner 名下的指定例程。
// 不存在或归属不符都返回 ErrNotFound。
func (s *RoutineStore) GetByIDForOwner(ctx context.Context, id uint, owner string) (*model.SavedRoutine, error) {
	var routine model.SavedRoutine
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		First(&routine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	return &routine, nil
}

// Update 更新 owner 名下例程的标题和/或内容，只覆盖显式给出的字段。
func (s *RoutineStore) Update(ctx context.Context, id uint, owner string, title, content *string) (*model.SavedRoutine, error) {
	routine, err := s.GetByIDForOwner(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title != nil {
		updates["title"] = *title
	}
	if content != nil {
		updates["content"] = *content
	}
	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Model(&model.SavedRoutine{}).
			Where("id = ? AND owner = ?", id, owner).
			Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("update routine: %w", err)
		}
		if title != nil {
			routine.Title = title
		}
		if content != nil {
			routine.Content = *content
		}
	}
	return routine, nil
}

// DeleteByIDForOwner 删除 owner 名下的指定例程。
func (s *RoutineStore) DeleteByIDForOwner(ctx context.Context, id uint, owner string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Delete(&model.SavedRoutine{})
	if res.Error != nil {
		return fmt.Errorf("delete routine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
