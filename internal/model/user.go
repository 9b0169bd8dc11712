package model

// User 表示系统用户。
//
// username 即主键，注册后不再变更；hashed_password 只存 bcrypt 哈希，
// 绝不落明文。Task 与 SavedRoutine 通过 owner 字段按用户名关联，
// 数据库层不加外键约束，归属校验在应用层完成。
type User struct {
	Username       string `gorm:"primaryKey;type:varchar(191)" json:"username"`
	HashedPassword string `gorm:"not null" json:"hashed_password"`
}

// TableName 指定表名。
func (User) TableName() string { return "users" }
