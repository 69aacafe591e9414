// Blocking operators for rxcore
// 阻塞操作符：订阅并等待终止，用channel等待而不是轮询
package rxcore

import (
	"context"
)

// ============================================================================
// 阻塞操作符实现
// ============================================================================

// Block 订阅并阻塞等待结果。ctx先结束时取消订阅并返回ctx.Err()。
func (s Single[T]) Block(ctx context.Context) (T, error) {
	var value T
	sub := s.Subscribe(func(v T) { value = v }, func(error) {}, nil)

	if err := awaitSubscription(ctx, sub); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// Collect 订阅并阻塞收集全部元素。失败时返回已收集的元素和错误。
func (s Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var values []T
	sub := s.Subscribe(func(v T) { values = append(values, v) }, func(error) {}, nil)

	if err := awaitSubscription(ctx, sub); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return values, err
	}
	return values, nil
}

// BlockLast 订阅并阻塞等待最后一个元素，Stream为空时返回的bool为false
func (s Stream[T]) BlockLast(ctx context.Context) (T, bool, error) {
	var (
		last T
		ok   bool
	)
	sub := s.Subscribe(func(v T) {
		last = v
		ok = true
	}, func(error) {}, nil)

	if err := awaitSubscription(ctx, sub); err != nil {
		var zero T
		return zero, false, err
	}
	return last, ok, nil
}

// awaitSubscription 等待订阅释放，ctx结束时取消订阅
func awaitSubscription(ctx context.Context, sub *Subscription) error {
	if err := sub.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			sub.Dispose()
		}
		return err
	}
	return nil
}
