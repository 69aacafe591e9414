// Factory functions for rxcore
// Stream工厂函数，所有生产者都延迟到订阅时执行
package rxcore

import (
	"context"
	"iter"
)

// ============================================================================
// 基础工厂函数
// ============================================================================

// Generate 从多值生产者创建Stream。
// emit在订阅被取消或终止后返回false，生产者应当停止；返回的错误在已发射元素之后投递。
func Generate[T any](producer func(ctx context.Context, emit func(T) bool) error) Stream[T] {
	return Stream[T]{src: func(sub *Subscription, observer Observer[T]) {
		if sub.isCancelled() {
			return
		}

		emit := func(value T) bool {
			if sub.isCancelled() {
				return false
			}
			observer(nextItem(value))
			return !sub.isCancelled()
		}

		var err error
		if perr := safeCall(func() { err = producer(sub.ctx, emit) }); perr != nil {
			err = perr
		}
		if err != nil {
			observer(errorItem[T](err))
			return
		}
		observer(completeItem[T]())
	}}
}

// Just 从给定的值创建Stream
func Just[T any](values ...T) Stream[T] {
	return FromSlice(values)
}

// FromSlice 从切片创建Stream
func FromSlice[T any](values []T) Stream[T] {
	return Generate(func(_ context.Context, emit func(T) bool) error {
		for _, v := range values {
			if !emit(v) {
				return nil
			}
		}
		return nil
	})
}

// FromSeq 从迭代器创建Stream，每次订阅重新迭代
func FromSeq[T any](seq iter.Seq[T]) Stream[T] {
	return Generate(func(_ context.Context, emit func(T) bool) error {
		for v := range seq {
			if !emit(v) {
				return nil
			}
		}
		return nil
	})
}

// FromSeq2 从带错误的迭代器创建Stream，遇到第一个错误即失败
func FromSeq2[T any](seq iter.Seq2[T, error]) Stream[T] {
	return Generate(func(_ context.Context, emit func(T) bool) error {
		for v, err := range seq {
			if err != nil {
				return err
			}
			if !emit(v) {
				return nil
			}
		}
		return nil
	})
}

// Empty 创建一个立即完成的Stream
func Empty[T any]() Stream[T] {
	return FromSlice[T](nil)
}

// Error 创建一个立即失败的Stream
func Error[T any](err error) Stream[T] {
	return Generate(func(context.Context, func(T) bool) error {
		return err
	})
}
