package store

import "errors"

// 存储层统一的错误种类。API 层负责把它们映射为 404 / 409。
//
// ErrNotFound 刻意不区分"记录不存在"与"记录存在但不属于请求者"，
// 避免向调用方泄露他人资源是否存在。
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)
