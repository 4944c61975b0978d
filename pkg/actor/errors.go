package actor

import (
	"errors"
	"fmt"
)

// 投递错误哨兵值，配合 errors.Is 使用
var (
	ErrDeadActor     = errors.New("actor is terminated")
	ErrUnknownActor  = errors.New("unknown actor")
	ErrDuplicateName = errors.New("duplicate actor name")
	ErrSystemStopped = errors.New("actor system is shutting down")
	ErrNoSender      = errors.New("message has no sender")
	ErrNilMessage    = errors.New("nil message")
)

// DeadActorError 目标 Actor 已终止，消息被丢弃
type DeadActorError struct {
	ID   string
	Kind string
}

// Error 实现 error 接口
func (e *DeadActorError) Error() string {
	return fmt.Sprintf("actor %s is terminated, %s dropped", e.ID, e.Kind)
}

// Is 匹配 ErrDeadActor
func (e *DeadActorError) Is(target error) bool { return target == ErrDeadActor }

// UnknownActorError Actor 未在系统中注册
type UnknownActorError struct {
	ID string
}

// Error 实现 error 接口
func (e *UnknownActorError) Error() string {
	return fmt.Sprintf("unknown actor %q", e.ID)
}

// Is 匹配 ErrUnknownActor
func (e *UnknownActorError) Is(target error) bool { return target == ErrUnknownActor }

// DuplicateNameError 名称已被注册
type DuplicateNameError struct {
	Name string
}

// Error 实现 error 接口
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("actor name %q already registered", e.Name)
}

// Is 匹配 ErrDuplicateName
func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// PanicError Receive 中的 panic 被恢复后转换成的错误
type PanicError struct {
	Value any
}

// Error 实现 error 接口
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap 如果 panic 值本身是 error 则返回它
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// FailedError Ask 收到失败消息时返回
type FailedError struct {
	Failure Failure
}

// Error 实现 error 接口
func (e *FailedError) Error() string {
	return e.Failure.Reason()
}
