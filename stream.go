// Stream implementation for rxcore
// 多值发布者：按生产顺序发射每个元素，然后完成；中途失败则停止发射并投递错误
package rxcore

// ============================================================================
// Stream 实现
// ============================================================================

// Stream 冷的多值发布者。构造后不可变，每次Subscribe都会从头重新执行生产者。
type Stream[T any] struct {
	src source[T]
}

// NewStream 从订阅入口创建Stream
func NewStream[T any](src func(sub *Subscription, observer Observer[T])) Stream[T] {
	return Stream[T]{src: src}
}

// Subscribe 订阅。任何回调都可以为nil；onError为nil时失败交给兜底处理器。
func (s Stream[T]) Subscribe(onNext func(T), onError func(error), onComplete func()) *Subscription {
	return subscribe(s.src, onNext, onError, onComplete)
}

// DoOnNext 每个元素发射之前执行副作用
func (s Stream[T]) DoOnNext(action func(T) error) Stream[T] {
	return Stream[T]{src: doOnNext(s.src, "doOnNext", action)}
}

// DoOnComplete 完成之前执行副作用
func (s Stream[T]) DoOnComplete(action func() error) Stream[T] {
	return Stream[T]{src: doOnComplete(s.src, action)}
}

// DoOnError 错误转发之前执行副作用
func (s Stream[T]) DoOnError(action func(error) error) Stream[T] {
	return Stream[T]{src: doOnError(s.src, action)}
}

// OnErrorReturn 失败时在已发射元素之后补发fallback并完成
func (s Stream[T]) OnErrorReturn(fallback T) Stream[T] {
	return Stream[T]{src: onErrorReturn(s.src, fallback)}
}

// OnErrorResume 失败时切换到handler返回的Stream
func (s Stream[T]) OnErrorResume(handler func(error) Stream[T]) Stream[T] {
	return Stream[T]{src: onErrorResume(s.src, func(err error) source[T] {
		return handler(err).src
	})}
}

// Cache 返回热发布者：上游最多执行一次，全部元素与终止事件重放给所有订阅者
func (s Stream[T]) Cache() Stream[T] {
	return Stream[T]{src: newReplayCache(s.src).source()}
}

// SubscribeOn 上游生产在scheduler的worker上执行
func (s Stream[T]) SubscribeOn(scheduler Scheduler) Stream[T] {
	return Stream[T]{src: subscribeOn(s.src, scheduler)}
}

// PublishOn 下游钩子与消费者回调在scheduler的worker上按顺序执行
func (s Stream[T]) PublishOn(scheduler Scheduler) Stream[T] {
	return Stream[T]{src: publishOn(s.src, scheduler)}
}
