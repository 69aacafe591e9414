// Elastic scheduler for rxcore
// 无界的elastic调度器：按需创建worker，归还后缓存复用，空闲超过TTL后回收
package rxcore

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultElasticTTL elastic调度器空闲worker的默认存活时间
const DefaultElasticTTL = 60 * time.Second

type idleWorker struct {
	w     *serialWorker
	since time.Time
}

// ElasticScheduler 无界worker池
type ElasticScheduler struct {
	name string
	opts *schedulerOptions

	mu       sync.Mutex
	idle     []idleWorker
	live     map[*serialWorker]struct{}
	seq      int
	disposed bool

	evictOnce sync.Once
	ticker    *clock.Ticker
	stopEvict chan struct{}
}

// NewElastic 创建elastic调度器
func NewElastic(name string, opts ...Option) *ElasticScheduler {
	return &ElasticScheduler{
		name:      name,
		opts:      newSchedulerOptions(opts),
		live:      make(map[*serialWorker]struct{}),
		stopEvict: make(chan struct{}),
	}
}

// Name 调度器名称
func (s *ElasticScheduler) Name() string {
	return s.name
}

// CreateWorker 优先复用最近归还的空闲worker，否则创建新worker
func (s *ElasticScheduler) CreateWorker() (Worker, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, ErrSchedulerDisposed
	}

	var w *serialWorker
	if n := len(s.idle); n > 0 {
		w = s.idle[n-1].w
		s.idle = s.idle[:n-1]
	} else {
		s.seq++
		ref := WorkerRef{Scheduler: s.name, Worker: fmt.Sprintf("%s-%d", s.name, s.seq)}
		w = newSerialWorker(ref, s.opts.log())
		s.live[w] = struct{}{}
		metrics.workers.WithLabelValues(s.name).Inc()
		s.opts.log().Debug().Str("worker", ref.String()).Msg("elastic worker created")
	}
	s.mu.Unlock()

	s.startEvictor()
	return newWorkerHandle(w, func() { s.release(w) }), nil
}

// Schedule 在一个临时借用的worker上执行任务，任务结束后归还worker
func (s *ElasticScheduler) Schedule(task func()) (Disposable, error) {
	worker, err := s.CreateWorker()
	if err != nil {
		return disposedDisposable(), err
	}

	cancelled := newDisposable(nil)
	if _, err := worker.Schedule(func() {
		defer worker.Dispose()
		if cancelled.IsDisposed() {
			return
		}
		task()
	}); err != nil {
		worker.Dispose()
		return disposedDisposable(), err
	}
	return cancelled, nil
}

// release 把worker放回空闲列表
func (s *ElasticScheduler) release(w *serialWorker) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		w.stop()
		return
	}
	s.idle = append(s.idle, idleWorker{w: w, since: s.opts.clock.Now()})
	s.mu.Unlock()
}

// startEvictor 第一次创建worker时启动回收循环，ticker同步创建
func (s *ElasticScheduler) startEvictor() {
	s.evictOnce.Do(func() {
		s.mu.Lock()
		if s.disposed {
			s.mu.Unlock()
			return
		}
		s.ticker = s.opts.clock.Ticker(s.opts.ttl)
		s.mu.Unlock()

		go s.evictLoop(s.ticker)
	})
}

func (s *ElasticScheduler) evictLoop(ticker *clock.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-s.stopEvict:
			return
		case <-ticker.C:
			s.evictExpired(s.opts.clock.Now())
		}
	}
}

// evictExpired 回收空闲时间达到TTL的worker，返回回收数量
func (s *ElasticScheduler) evictExpired(now time.Time) int {
	s.mu.Lock()
	var expired []*serialWorker
	kept := s.idle[:0]
	for _, iw := range s.idle {
		if now.Sub(iw.since) >= s.opts.ttl {
			expired = append(expired, iw.w)
			delete(s.live, iw.w)
			continue
		}
		kept = append(kept, iw)
	}
	s.idle = kept
	s.mu.Unlock()

	for _, w := range expired {
		w.stop()
		metrics.workers.WithLabelValues(s.name).Dec()
		s.opts.log().Debug().Str("worker", w.ref.String()).Msg("elastic worker evicted")
	}
	return len(expired)
}

// Workers 当前存活的worker数量（包括空闲的）
func (s *ElasticScheduler) Workers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Idle 当前空闲的worker数量
func (s *ElasticScheduler) Idle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idle)
}

// Dispose 关闭调度器以及所有worker
func (s *ElasticScheduler) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	workers := make([]*serialWorker, 0, len(s.live))
	for w := range s.live {
		workers = append(workers, w)
	}
	s.live = make(map[*serialWorker]struct{})
	s.idle = nil
	s.mu.Unlock()

	close(s.stopEvict)
	for _, w := range workers {
		w.stop()
	}
	metrics.workers.WithLabelValues(s.name).Sub(float64(len(workers)))
	s.opts.log().Debug().Str("scheduler", s.name).Int("workers", len(workers)).Msg("elastic scheduler disposed")
}

// IsDisposed 检查是否已关闭
func (s *ElasticScheduler) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
