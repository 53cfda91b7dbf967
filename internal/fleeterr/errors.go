package fleeterr

import (
	"errors"
	"fmt"
)

// 统一的业务错误分类：
// - ValidationError: 输入不合法（调用方问题，不重试）
// - ConflictError:   业务规则冲突（重复车牌 / 时间段重叠 / 已完成 等，不自动重试）
// - ErrNotFound:     实体不存在
// - TransientError:  存储层基础设施错误（与“存储过程不存在”区分开，可走 fallback 重试一次）
//
// gRPC 层通过 errors.Is / errors.As 做 code 映射，业务层不直接依赖 grpc codes。

// ErrNotFound 实体不存在。
var ErrNotFound = errors.New("not found")

// ValidationError 携带违反的具体规则，消息面向最终用户。
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Validationf 构造 ValidationError。
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ConflictError 业务规则冲突。Rule 用于区分冲突类型（overlap / duplicate_plate /
// already_completed / vehicle_in_use 等），Msg 面向最终用户。
type ConflictError struct {
	Rule string
	Msg  string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflictf 构造 ConflictError。
func Conflictf(rule, format string, args ...any) error {
	return &ConflictError{Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

// TransientError 包装一次失败的存储调用，保留原始错误链。
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient 包装存储层错误。
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsValidation 判断是否为输入校验错误。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict 判断是否为业务冲突，可选按 rule 过滤。
func IsConflict(err error, rule string) bool {
	var ce *ConflictError
	if !errors.As(err, &ce) {
		return false
	}
	return rule == "" || ce.Rule == rule
}

// IsNotFound 判断是否为实体不存在。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient 判断是否为存储层瞬时错误。
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
