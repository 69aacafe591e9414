// Subscription implementation for rxcore
// 订阅：发布者与消费者回调之间的一次绑定，负责取消状态与终止事件的投递
package rxcore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ============================================================================
// Subscription
// ============================================================================

// Subscription 一次Subscribe调用产生的订阅。
//
// 投递协议：mu只保护状态，回调执行期间不持有锁。终止事件先置位cancelled，
// 再执行回调，最后关闭done。因此IsDisposed()返回true之后不会再有任何回调被调用。
type Subscription struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cancelled bool
	active    int
	closed    bool
	done      chan struct{}
	err       error
	last      WorkerRef

	// resources 订阅释放时一并释放，例如publishOn占用的worker
	resources *CompositeDisposable
}

func newSubscription() *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscription{
		id:        uuid.New(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		resources: NewCompositeDisposable(),
	}
}

// ID 订阅标识
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Dispose 取消订阅。已经投递的事件不会被撤销，已经在worker上运行的生产者也不保证停止。
func (s *Subscription) Dispose() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	closeNow := s.markClosedLocked()
	s.mu.Unlock()

	s.cancel()
	if closeNow {
		s.closeDone()
	}
}

// IsDisposed 订阅是否已终止或被取消，且没有正在进行的回调
func (s *Subscription) IsDisposed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done 订阅释放后关闭的channel
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Wait 阻塞直到订阅释放或ctx结束。返回终止错误（如果有），ctx先结束时返回ctx.Err()。
func (s *Subscription) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err 终止错误，正常完成或尚未终止时为nil
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastWorker 最近一次投递事件的worker，零值表示在调用方goroutine上投递
func (s *Subscription) LastWorker() WorkerRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// isCancelled 上游用于尽早停止生产
func (s *Subscription) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// deliver 投递一个非终止事件，订阅已取消时返回false
func (s *Subscription) deliver(via WorkerRef, fn func()) bool {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return false
	}
	s.active++
	s.last = via
	s.mu.Unlock()

	defer s.release()
	fn()
	return true
}

// terminate 投递终止事件，只有第一个终止事件生效
func (s *Subscription) terminate(via WorkerRef, err error, fn func()) bool {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return false
	}
	s.cancelled = true
	s.active++
	s.last = via
	s.err = err
	s.mu.Unlock()

	defer s.release()
	fn()
	return true
}

func (s *Subscription) release() {
	s.mu.Lock()
	s.active--
	closeNow := s.markClosedLocked()
	s.mu.Unlock()

	if closeNow {
		s.cancel()
		s.closeDone()
	}
}

// closeDone 释放附属资源后关闭done
func (s *Subscription) closeDone() {
	s.resources.Dispose()
	close(s.done)
}

// addResource 登记一个随订阅释放的资源，订阅已释放时立即释放
func (s *Subscription) addResource(d Disposable) {
	s.resources.Add(d)
}

func (s *Subscription) markClosedLocked() bool {
	if s.cancelled && s.active == 0 && !s.closed {
		s.closed = true
		return true
	}
	return false
}

// ============================================================================
// 终端观察者
// ============================================================================

// subscribe 创建订阅并沿装饰链向上游订阅
func subscribe[T any](src source[T], onNext func(T), onError func(error), onComplete func()) *Subscription {
	sub := newSubscription()
	observer := lambdaObserver(sub, onNext, onError, onComplete)
	if err := safeCall(func() { src(sub, observer) }); err != nil {
		observer(errorItem[T](err))
	}
	return sub
}

// lambdaObserver 把回调函数适配为终端观察者。
// 没有onError时失败交给兜底处理器，订阅进入失败终止状态。
func lambdaObserver[T any](sub *Subscription, onNext func(T), onError func(error), onComplete func()) Observer[T] {
	fail := func(via WorkerRef, err error) {
		sub.terminate(via, err, func() {
			if onError == nil {
				reportUnhandled(&UnhandledError{SubscriptionID: sub.id, Cause: err})
				return
			}
			if perr := safeCall(func() { onError(err) }); perr != nil {
				reportUnhandled(&UnhandledError{
					SubscriptionID: sub.id,
					Cause:          &CallbackError{Hook: "onError", Cause: perr},
				})
			}
		})
	}

	return func(item Item[T]) {
		switch item.Kind {
		case KindNext:
			sub.deliver(item.via, func() {
				if onNext == nil {
					return
				}
				if err := safeCall(func() { onNext(item.Value) }); err != nil {
					fail(item.via, &CallbackError{Hook: "onNext", Cause: err})
				}
			})
		case KindError:
			fail(item.via, item.Err)
		case KindComplete:
			sub.terminate(item.via, nil, func() {
				if onComplete == nil {
					return
				}
				if err := safeCall(onComplete); err != nil {
					reportUnhandled(&UnhandledError{
						SubscriptionID: sub.id,
						Cause:          &CallbackError{Hook: "onComplete", Cause: err},
					})
				}
			})
		}
	}
}
