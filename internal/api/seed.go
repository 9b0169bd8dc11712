package api

import (
	"context"

	"github.com/JocelynSullivan/VibeCycle/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDemoData 初始化演示账号和几条示例任务。
//
// 幂等：重复启动不会重复插入，已有数据只做必要的归属修正。
func (s *Server) SeedDemoData(ctx context.Context) error {
	const demoUsername = "demo"

	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", demoUsername).First(&user).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == gorm.ErrRecordNotFound {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		user = model.User{
			Username:       demoUsername,
			HashedPassword: string(hash),
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
	}

	samples := []model.Task{
		{TaskName: "Morning stretch", RoutineType: strPtr("morning"), NecessityLevel: intPtr(3), DifficultyLevel: intPtr(1), AmountOfTime: intPtr(10)},
		{TaskName: "Journal", RoutineType: strPtr("evening"), NecessityLevel: intPtr(2), DifficultyLevel: intPtr(1), AmountOfTime: intPtr(15)},
		{TaskName: "Plan tomorrow", RoutineType: strPtr("evening"), NecessityLevel: intPtr(4), DifficultyLevel: intPtr(2), AmountOfTime: intPtr(5)},
	}
	for _, sample := range samples {
		var existing model.Task
		taskErr := s.db.WithContext(ctx).Where("task_name = ?", sample.TaskName).First(&existing).Error
		if taskErr != nil && taskErr != gorm.ErrRecordNotFound {
			return taskErr
		}
		if taskErr == gorm.ErrRecordNotFound {
			sample.Owner = strPtr(demoUsername)
			if err := s.db.WithContext(ctx).Create(&sample).Error; err != nil {
				return err
			}
			continue
		}
		// 无主的同名任务归到演示账号下
		if existing.Owner == nil {
			if err := s.db.WithContext(ctx).Model(&model.Task{}).
				Where("task_name = ?", sample.TaskName).
				Update("owner", demoUsername).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
