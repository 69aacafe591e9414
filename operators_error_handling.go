// Error handling operators for rxcore
// 错误处理操作符实现
package rxcore

// ============================================================================
// 错误处理操作符实现
// ============================================================================

// onErrorReturn 上游失败时改为发射fallback并完成，只影响经过它的这一次订阅
func onErrorReturn[T any](upstream source[T], fallback T) source[T] {
	return func(sub *Subscription, observer Observer[T]) {
		upstream(sub, func(item Item[T]) {
			if item.IsError() {
				observer(Item[T]{Kind: KindNext, Value: fallback, via: item.via})
				observer(Item[T]{Kind: KindComplete, via: item.via})
				return
			}
			observer(item)
		})
	}
}

// onErrorResume 上游失败时切换到fallback返回的发布者
func onErrorResume[T any](upstream source[T], fallback func(error) source[T]) source[T] {
	return func(sub *Subscription, observer Observer[T]) {
		upstream(sub, func(item Item[T]) {
			if !item.IsError() {
				observer(item)
				return
			}

			var next source[T]
			if err := safeCall(func() { next = fallback(item.Err) }); err != nil {
				observer(Item[T]{Kind: KindError, Err: &CallbackError{Hook: "onErrorResume", Cause: err}, via: item.via})
				return
			}
			if next == nil {
				observer(item)
				return
			}
			next(sub, observer)
		})
	}
}
