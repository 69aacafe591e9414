// Side effect operators for rxcore
// 副作用操作符实现，包含DoOnNext, DoOnSuccess, DoOnComplete, DoOnError
package rxcore

import (
	"sync/atomic"

	"go.uber.org/multierr"
)

// ============================================================================
// 副作用操作符实现
// ============================================================================

// hooks 一组副作用钩子，为nil的钩子被跳过
type hooks[T any] struct {
	onNext     func(T) error
	onError    func(error) error
	onComplete func() error
}

// tap 在事件转发到下游之前执行钩子。
// 钩子返回错误或panic时，该错误替换当前事件作为管道的失败向下游传播，之后的上游事件全部丢弃。
func tap[T any](upstream source[T], name string, h hooks[T]) source[T] {
	return func(sub *Subscription, observer Observer[T]) {
		var done atomic.Bool

		upstream(sub, func(item Item[T]) {
			if done.Load() {
				return
			}

			switch item.Kind {
			case KindNext:
				if h.onNext != nil {
					if err := callHook(func() error { return h.onNext(item.Value) }); err != nil {
						done.Store(true)
						observer(Item[T]{Kind: KindError, Err: &CallbackError{Hook: name, Cause: err}, via: item.via})
						return
					}
				}
			case KindError:
				done.Store(true)
				if h.onError != nil {
					if err := callHook(func() error { return h.onError(item.Err) }); err != nil {
						item.Err = multierr.Combine(item.Err, &CallbackError{Hook: name, Cause: err})
					}
				}
			case KindComplete:
				done.Store(true)
				if h.onComplete != nil {
					if err := callHook(h.onComplete); err != nil {
						observer(Item[T]{Kind: KindError, Err: &CallbackError{Hook: name, Cause: err}, via: item.via})
						return
					}
				}
			}

			observer(item)
		})
	}
}

// callHook 执行钩子，panic转换为错误
func callHook(hook func() error) (err error) {
	if perr := safeCall(func() { err = hook() }); perr != nil {
		return perr
	}
	return err
}

func doOnNext[T any](upstream source[T], name string, action func(T) error) source[T] {
	return tap(upstream, name, hooks[T]{onNext: action})
}

func doOnError[T any](upstream source[T], action func(error) error) source[T] {
	return tap(upstream, "doOnError", hooks[T]{onError: action})
}

func doOnComplete[T any](upstream source[T], action func() error) source[T] {
	return tap(upstream, "doOnComplete", hooks[T]{onComplete: action})
}
