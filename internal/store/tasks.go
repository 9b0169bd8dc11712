package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JocelynSullivan/VibeCycle/internal/model"

	"gorm.io/gorm"
)

// TaskStore 提供按归属过滤的任务存取。
type TaskStore struct {
	db *gorm.DB
}

// NewTaskStore 创建 TaskStore。
func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// ListByOwner 返回指定用户拥有的全部任务。
// 不排序，顺序以存储引擎返回为准，调用方不应依赖。
func (s *TaskStore) ListByOwner(ctx context.Context, owner string) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetByName 按任务名查找。查不到不算错误，返回 (nil, nil)。
func (s *TaskStore) GetByName(ctx context.Context, name string) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).Where("task_name = ?", name).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Upsert 按任务名创建或更新任务，返回是否为新建。
//
// 规则：
//  1. 不存在：归属设为 owner，可选字段按请求原样存入，插入。
//  2. 已存在且归属是别的用户：返回 ErrConflict，不做任何改动。
//  3. 已存在且无主或属于 owner：认领归属，只覆盖请求里出现的字段，
//     缺席字段保持原值（部分更新，不是整行替换）。
//
// 先读后写存在一个窄竞态：两个无主调用者同时认领同名任务时后写覆盖
// 先写。这是已知并记录的限制，不在进程内加锁（多实例下没有意义）。
func (s *TaskStore) Upsert(ctx context.Context, in model.Task, owner string) (bool, error) {
	existing, err := s.GetByName(ctx, in.TaskName)
	if err != nil {
		return false, err
	}

	if existing == nil {
		in.Owner = &owner
		if err := s.db.WithContext(ctx).Create(&in).Error; err != nil {
			return false, fmt.Errorf("create task: %w", err)
		}
		return true, nil
	}

	if existing.Owner != nil && *existing.Owner != owner {
		return false, ErrConflict
	}

	updates := map[string]interface{}{"owner": owner}
	if in.RoutineType != nil {
		updates["routine_type"] = *in.RoutineType
	}
	if in.NecessityLevel != nil {
		updates["necessity_level"] = *in.NecessityLevel
	}
	if in.DifficultyLevel != nil {
		updates["difficulty_level"] = *in.DifficultyLevel
	}
	if in.AmountOfTime != nil {
		updates["amount_of_time"] = *in.AmountOfTime
	}

	err = s.db.WithContext(ctx).Model(&model.Task{}).
		Where("task_name = ?", in.TaskName).
		Updates(updates).Error
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	return false, nil
}

// DeleteByNameForOwner 删除 owner 名下的指定任务。
// 任务不存在或归属不符都返回 ErrNotFound，调用方无从区分。
func (s *TaskStore) DeleteByNameForOwner(ctx context.Context, name, owner string) error {
	res := s.db.WithContext(ctx).
		Where("task_name = ? AND owner = ?", name, owner).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
