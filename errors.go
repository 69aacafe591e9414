// Error types for rxcore
// 错误类型定义与最后兜底的未处理错误处理器
package rxcore

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// ============================================================================
// 错误类型定义
// ============================================================================

// ErrSchedulerDisposed 调度器或worker已释放，任务被拒绝
var ErrSchedulerDisposed = errors.New("rxcore: scheduler disposed")

// PanicError 从生产者、钩子或回调中恢复的panic
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rxcore: recovered panic: %v", e.Value)
}

// Unwrap 当panic值本身是error时暴露原始错误
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// CallbackError doOnX钩子或订阅回调自身失败，后续作为管道的失败继续传播
type CallbackError struct {
	Hook  string
	Cause error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("rxcore: %s callback failed: %v", e.Hook, e.Cause)
}

func (e *CallbackError) Unwrap() error { return e.Cause }

// UnhandledError 到达没有onError回调的订阅的失败
type UnhandledError struct {
	SubscriptionID uuid.UUID
	Cause          error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("rxcore: unhandled error in subscription %s: %v", e.SubscriptionID, e.Cause)
}

func (e *UnhandledError) Unwrap() error { return e.Cause }

// ============================================================================
// 最后兜底处理器
// ============================================================================

var unhandledHandler atomic.Pointer[func(error)]

// SetUnhandledErrorHandler 替换未处理错误的兜底处理器，返回恢复之前处理器的函数。
// 传入nil恢复默认行为（记录日志）。
func SetUnhandledErrorHandler(handler func(error)) (restore func()) {
	var next *func(error)
	if handler != nil {
		next = &handler
	}
	prev := unhandledHandler.Swap(next)
	return func() {
		unhandledHandler.Store(prev)
	}
}

// reportUnhandled 把错误交给兜底处理器，处理器自身的panic会被吞掉
func reportUnhandled(err error) {
	metrics.unhandledErrors.Inc()

	if h := unhandledHandler.Load(); h != nil {
		if perr := safeCall(func() { (*h)(err) }); perr != nil {
			currentLogger().Error().Err(perr).Msg("unhandled error handler panicked")
		}
		return
	}

	currentLogger().Error().Err(err).Msg("unhandled subscription failure")
}
