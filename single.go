// Single implementation for rxcore
// 单值发布者：成功时发射一个值然后完成，失败时只发射错误
package rxcore

import (
	"context"
)

// ============================================================================
// Single 实现
// ============================================================================

// Single 冷的单值发布者。构造后不可变，每次Subscribe都会重新执行整条装饰链和生产者。
type Single[T any] struct {
	src source[T]
}

// NewSingle 从订阅入口创建Single
func NewSingle[T any](src func(sub *Subscription, observer Observer[T])) Single[T] {
	return Single[T]{src: src}
}

// Subscribe 订阅。任何回调都可以为nil；onError为nil时失败交给兜底处理器。
// 没有调度装饰时，整个执行在调用方goroutine上同步完成。Subscribe本身从不panic。
func (s Single[T]) Subscribe(onNext func(T), onError func(error), onComplete func()) *Subscription {
	return subscribe(s.src, onNext, onError, onComplete)
}

// DoOnNext 值发射之前执行副作用
func (s Single[T]) DoOnNext(action func(T) error) Single[T] {
	return Single[T]{src: doOnNext(s.src, "doOnNext", action)}
}

// DoOnSuccess 成功发射值之前执行副作用
func (s Single[T]) DoOnSuccess(action func(T) error) Single[T] {
	return Single[T]{src: doOnNext(s.src, "doOnSuccess", action)}
}

// DoOnComplete 完成之前执行副作用
func (s Single[T]) DoOnComplete(action func() error) Single[T] {
	return Single[T]{src: doOnComplete(s.src, action)}
}

// DoOnError 错误转发之前执行副作用，不会吞掉错误
func (s Single[T]) DoOnError(action func(error) error) Single[T] {
	return Single[T]{src: doOnError(s.src, action)}
}

// OnErrorReturn 失败时改为发射fallback并完成
func (s Single[T]) OnErrorReturn(fallback T) Single[T] {
	return Single[T]{src: onErrorReturn(s.src, fallback)}
}

// OnErrorResume 失败时切换到handler返回的Single
func (s Single[T]) OnErrorResume(handler func(error) Single[T]) Single[T] {
	return Single[T]{src: onErrorResume(s.src, func(err error) source[T] {
		return handler(err).src
	})}
}

// Cache 返回热发布者：生产者最多执行一次，结果重放给所有订阅者
func (s Single[T]) Cache() Single[T] {
	return Single[T]{src: newReplayCache(s.src).source()}
}

// SubscribeOn 上游生产在scheduler的worker上执行
func (s Single[T]) SubscribeOn(scheduler Scheduler) Single[T] {
	return Single[T]{src: subscribeOn(s.src, scheduler)}
}

// PublishOn 下游钩子与消费者回调在scheduler的worker上执行
func (s Single[T]) PublishOn(scheduler Scheduler) Single[T] {
	return Single[T]{src: publishOn(s.src, scheduler)}
}

// AsStream 转换为Stream
func (s Single[T]) AsStream() Stream[T] {
	return Stream[T]{src: s.src}
}

// ============================================================================
// Single 工厂函数
// ============================================================================

// SingleFromSupplier 从生产者函数创建Single，订阅之前不会调用supplier
func SingleFromSupplier[T any](supplier func() (T, error)) Single[T] {
	return SingleFromFunc(func(context.Context) (T, error) {
		return supplier()
	})
}

// SingleFromFunc 从带context的生产者函数创建Single，订阅释放时ctx被取消
func SingleFromFunc[T any](producer func(ctx context.Context) (T, error)) Single[T] {
	return Single[T]{src: func(sub *Subscription, observer Observer[T]) {
		if sub.isCancelled() {
			return
		}

		var (
			value T
			err   error
		)
		if perr := safeCall(func() { value, err = producer(sub.ctx) }); perr != nil {
			err = perr
		}
		if err != nil {
			observer(errorItem[T](err))
			return
		}

		observer(nextItem(value))
		observer(completeItem[T]())
	}}
}

// SingleJust 创建发射单个值的Single
func SingleJust[T any](value T) Single[T] {
	return SingleFromSupplier(func() (T, error) {
		return value, nil
	})
}

// SingleError 创建发射错误的Single
func SingleError[T any](err error) Single[T] {
	return SingleFromSupplier(func() (T, error) {
		var zero T
		return zero, err
	})
}
