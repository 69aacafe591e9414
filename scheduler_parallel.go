// Parallel scheduler for rxcore
// 固定大小的parallel调度器，轮询分配worker
package rxcore

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// ParallelScheduler 固定大小的worker池
type ParallelScheduler struct {
	name     string
	opts     *schedulerOptions
	workers  []*serialWorker
	next     atomic.Uint64
	disposed atomic.Bool
}

// NewParallel 创建parallel调度器，size<=0时使用runtime.NumCPU()
func NewParallel(name string, size int, opts ...Option) *ParallelScheduler {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	s := &ParallelScheduler{
		name:    name,
		opts:    newSchedulerOptions(opts),
		workers: make([]*serialWorker, size),
	}
	for i := range s.workers {
		ref := WorkerRef{Scheduler: name, Worker: fmt.Sprintf("%s-%d", name, i+1)}
		s.workers[i] = newSerialWorker(ref, s.opts.log())
	}
	metrics.workers.WithLabelValues(name).Add(float64(size))
	return s
}

// Name 调度器名称
func (s *ParallelScheduler) Name() string {
	return s.name
}

// Size worker数量
func (s *ParallelScheduler) Size() int {
	return len(s.workers)
}

// pick 轮询选择worker
func (s *ParallelScheduler) pick() *serialWorker {
	idx := (s.next.Add(1) - 1) % uint64(len(s.workers))
	return s.workers[idx]
}

// CreateWorker 返回共享worker的一个视图，Dispose视图不会关闭底层worker
func (s *ParallelScheduler) CreateWorker() (Worker, error) {
	if s.disposed.Load() {
		return nil, ErrSchedulerDisposed
	}
	return newWorkerHandle(s.pick(), nil), nil
}

// Schedule 在下一个worker上执行任务
func (s *ParallelScheduler) Schedule(task func()) (Disposable, error) {
	if s.disposed.Load() {
		return disposedDisposable(), ErrSchedulerDisposed
	}
	return s.pick().Schedule(task)
}

// Dispose 关闭所有worker
func (s *ParallelScheduler) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	for _, w := range s.workers {
		w.stop()
	}
	metrics.workers.WithLabelValues(s.name).Sub(float64(len(s.workers)))
	s.opts.log().Debug().Str("scheduler", s.name).Int("workers", len(s.workers)).Msg("parallel scheduler disposed")
}

// IsDisposed 检查是否已关闭
func (s *ParallelScheduler) IsDisposed() bool {
	return s.disposed.Load()
}
