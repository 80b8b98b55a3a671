package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind 服务层对外暴露的错误类别
type ErrorKind string

const (
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindDuplicateInteraction ErrorKind = "DUPLICATE_INTERACTION"
	KindAlreadyActiveMember  ErrorKind = "ALREADY_ACTIVE_MEMBER"
	KindAlreadyRejected      ErrorKind = "ALREADY_REJECTED"
	KindForbidden            ErrorKind = "FORBIDDEN"
	KindInvalidApplicant     ErrorKind = "INVALID_APPLICANT"
	KindMissingLeader        ErrorKind = "MISSING_LEADER"
	KindInvalidCategory      ErrorKind = "INVALID_CATEGORY"
	KindTeamClosed           ErrorKind = "TEAM_CLOSED"
	KindStorage              ErrorKind = "STORAGE"
)

// Error 带类别和相关 ID 的业务错误；Err 只用于日志，不返回给客户端
type Error struct {
	Kind    ErrorKind
	Message string
	IDs     map[string]int64
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.IDs) > 0 {
		keys := make([]string, 0, len(e.IDs))
		for k := range e.IDs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", k, e.IDs[k]))
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按类别比较，errors.Is(err, ErrNotFound) 对任何 NOT_FOUND 错误成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// With 复制错误并附加 ID
func (e *Error) With(key string, id int64) *Error {
	ids := make(map[string]int64, len(e.IDs)+1)
	for k, v := range e.IDs {
		ids[k] = v
	}
	ids[key] = id
	return &Error{Kind: e.Kind, Message: e.Message, IDs: ids, Err: e.Err}
}

var (
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "资源不存在"}
	ErrContentNotFound      = &Error{Kind: KindNotFound, Message: "内容不存在"}
	ErrTeamNotFound         = &Error{Kind: KindNotFound, Message: "团队不存在"}
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "用户不存在"}
	ErrApplicationNotFound  = &Error{Kind: KindNotFound, Message: "申请不存在"}
	ErrDuplicateInteraction = &Error{Kind: KindDuplicateInteraction, Message: "重复操作"}
	ErrAlreadyActiveMember  = &Error{Kind: KindAlreadyActiveMember, Message: "已是团队成员"}
	ErrAlreadyRejected      = &Error{Kind: KindAlreadyRejected, Message: "申请已被拒绝"}
	ErrForbidden            = &Error{Kind: KindForbidden, Message: "只有组长可以执行此操作"}
	ErrInvalidApplicant     = &Error{Kind: KindInvalidApplicant, Message: "申请人不在待审核状态"}
	ErrMissingLeader        = &Error{Kind: KindMissingLeader, Message: "团队没有组长"}
	ErrInvalidCategory      = &Error{Kind: KindInvalidCategory, Message: "不支持的内容类型"}
	ErrTeamClosed           = &Error{Kind: KindTeamClosed, Message: "团队已停止招募"}
	ErrStorage              = &Error{Kind: KindStorage, Message: "服务器内部错误"}
)

// KindOf 返回错误类别，非业务错误归为 STORAGE
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// classify 把仓储层错误收敛为业务错误；记录不存在映射为 notFound
func classify(err error, notFound *Error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return &Error{Kind: KindStorage, Message: ErrStorage.Message, Err: err}
}

// resultLabel 指标 result 标签
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(KindOf(err)))
}
