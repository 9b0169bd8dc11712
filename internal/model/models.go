package model

// Task 表示用户录入的一项日常任务。
//
// task_name 即主键，全局唯一（跨用户共用一个命名空间，历史设计，
// 未经显式决策不得改为按用户隔离）。可选字段全部用指针表达：
// nil 表示"未填写"，与 0 值区分开，upsert 的部分更新语义依赖这一点。
type Task struct {
	TaskName        string  `gorm:"primaryKey;type:varchar(191)" json:"task_name"`
	RoutineType     *string `json:"routine_type"`    // 历史上限定 morning/evening，后放开为自由文本
	NecessityLevel  *int    `json:"necessity_level"` // 必要程度
	DifficultyLevel *int    `json:"difficulty_level"`
	AmountOfTime    *int    `json:"amount_of_time"` // 预计耗时（分钟）

	// nil 表示历史遗留的无主任务，可被任意用户认领。
	// owner 列是后期增量迁移加上的，必须保持可空。
	Owner *string `gorm:"type:varchar(191);index" json:"owner"`
}

// TableName 指定表名。
func (Task) TableName() string { return "tasks" }

// SavedRoutine 表示用户显式保存的一份生成结果快照。
//
// 生成与保存是两个独立操作：POST /routine 只生成不落库，
// 用户满意后再调 POST /routines 保存。
type SavedRoutine struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Owner   string  `gorm:"type:varchar(191);not null;index" json:"owner"`
	Title   *string `json:"title"`
	Content string  `gorm:"type:text;not null" json:"content"`
}

// TableName 指定表名。
func (SavedRoutine) TableName() string { return "saved_routines" }
