package rxcore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recorder 记录订阅回调收到的事件，事件格式为 "next:v" / "error:msg" / "complete"
type recorder[T any] struct {
	mu     sync.Mutex
	events []string
	values []T
	err    error
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{}
}

func (r *recorder[T]) onNext(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	r.events = append(r.events, fmt.Sprintf("next:%v", v))
}

func (r *recorder[T]) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	r.events = append(r.events, "error:"+err.Error())
}

func (r *recorder[T]) onComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "complete")
}

func (r *recorder[T]) subscribeSingle(s Single[T]) *Subscription {
	return s.Subscribe(r.onNext, r.onError, r.onComplete)
}

func (r *recorder[T]) subscribeStream(s Stream[T]) *Subscription {
	return s.Subscribe(r.onNext, r.onError, r.onComplete)
}

func (r *recorder[T]) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder[T]) valuesSnapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// waitDone 等待订阅释放，超时则测试失败
func waitDone(t *testing.T, sub *Subscription) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	select {
	case <-sub.Done():
	case <-ctx.Done():
		require.FailNow(t, "subscription did not finish in time")
	}
}

// captureUnhandled 在测试期间替换兜底处理器
func captureUnhandled(t *testing.T) <-chan error {
	t.Helper()

	ch := make(chan error, 16)
	restore := SetUnhandledErrorHandler(func(err error) {
		ch <- err
	})
	t.Cleanup(restore)
	return ch
}

func newTestElastic(t *testing.T, name string) *ElasticScheduler {
	t.Helper()
	s := NewElastic(name)
	t.Cleanup(s.Dispose)
	return s
}

func newTestParallel(t *testing.T, name string, size int) *ParallelScheduler {
	t.Helper()
	s := NewParallel(name, size)
	t.Cleanup(s.Dispose)
	return s
}
