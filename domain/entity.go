// Package domain 定义记录的身份语义以及实体/DTO 共享的最小契约。
package domain

import (
	"reflect"
	"strconv"
)

// IIdentified 具备可变数值身份的对象。
// 首次持久化之前 ID 为 nil，持久化之后由仓储赋值且非 nil。
type IIdentified interface {
	// GetID 返回对象的唯一标识，未持久化时为 nil
	GetID() *int64

	// SetID 设置唯一标识，传入 nil 表示清除
	SetID(id *int64)
}

// IRecord 泛型约束：可比较且带身份的记录类型。
//
// 实际使用中实体与 DTO 均为结构体指针，可比较性用于让通用服务
// 通过与零值比较来识别 nil 输入或"无结果"。
type IRecord interface {
	comparable
	IIdentified
}

// SameIdentity 判断两个对象是否代表同一条记录。
// 双方 ID 均非 nil 且相等时返回 true；未持久化（nil ID）的对象只与自身相等，
// 与任何其他对象都不相等（包括另一个 nil ID 的对象）。nil 对象（含类型化 nil 指针）返回 false。
func SameIdentity(a, b IIdentified) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	if a == b {
		return true
	}
	left, right := a.GetID(), b.GetID()
	if left == nil || right == nil {
		return false
	}
	return *left == *right
}

func isNil(v IIdentified) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// FormatID 将可空 ID 格式化为文本，nil 输出 "null"。
func FormatID(id *int64) string {
	if id == nil {
		return "null"
	}
	return strconv.FormatInt(*id, 10)
}

// ID 返回 v 的指针，便于书写 ID 字面量。
func ID(v int64) *int64 {
	return &v
}

// CloneID 复制 ID，避免多个对象共享同一个指针。
func CloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	return ID(*id)
}
