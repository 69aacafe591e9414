// Scheduling operators for rxcore
// SubscribeOn / PublishOn：把生产阶段或投递阶段转移到调度器的worker上
package rxcore

// subscribeOn 在一个worker上执行整个上游订阅（包括生产者），任务返回后归还worker。
// 上游没有经过其他调度边界的事件会被标记为来自该worker。
func subscribeOn[T any](upstream source[T], scheduler Scheduler) source[T] {
	return func(sub *Subscription, observer Observer[T]) {
		worker, err := scheduler.CreateWorker()
		if err != nil {
			observer(errorItem[T](err))
			return
		}

		ref := worker.Ref()
		annotated := func(item Item[T]) {
			if item.via.IsZero() {
				item.via = ref
			}
			observer(item)
		}

		if _, err := worker.Schedule(func() {
			defer worker.Dispose()
			if sub.isCancelled() {
				return
			}
			if err := safeCall(func() { upstream(sub, annotated) }); err != nil {
				annotated(errorItem[T](err))
			}
		}); err != nil {
			worker.Dispose()
			observer(errorItem[T](err))
		}
	}
}

// publishOn 每个订阅占用一个worker，所有下游投递按顺序在该worker上执行。
// 订阅释放（终止或取消）后归还worker。
func publishOn[T any](upstream source[T], scheduler Scheduler) source[T] {
	return func(sub *Subscription, observer Observer[T]) {
		worker, err := scheduler.CreateWorker()
		if err != nil {
			observer(errorItem[T](err))
			return
		}
		sub.addResource(worker)

		ref := worker.Ref()
		upstream(sub, func(item Item[T]) {
			if _, err := worker.Schedule(func() {
				// 已排队的事件在取消之后不再经过下游钩子
				if sub.isCancelled() {
					return
				}
				item.via = ref
				observer(item)
			}); err != nil && !sub.isCancelled() {
				observer(Item[T]{Kind: KindError, Err: err, via: item.via})
			}
		})
	}
}
