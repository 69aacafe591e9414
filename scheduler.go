// Scheduler abstractions for rxcore
// 调度器抽象：命名的逻辑worker池，负责把生产或投递转移到其他goroutine上执行
package rxcore

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ============================================================================
// 调度器接口
// ============================================================================

// Scheduler 命名的逻辑worker池
type Scheduler interface {
	// Name 调度器名称
	Name() string
	// Schedule 在池中某个worker上执行一个任务
	Schedule(task func()) (Disposable, error)
	// CreateWorker 从池中取出一个worker，用完后必须Dispose归还
	CreateWorker() (Worker, error)
	// Dispose 关闭调度器，之后的调度返回ErrSchedulerDisposed
	Dispose()
	// IsDisposed 检查是否已关闭
	IsDisposed() bool
}

// Worker 串行执行任务的逻辑worker，提交到同一个Worker的任务按FIFO顺序执行
type Worker interface {
	Disposable
	// Name worker名称
	Name() string
	// Ref worker标识
	Ref() WorkerRef
	// Schedule 提交一个任务
	Schedule(task func()) (Disposable, error)
}

// WorkerRef 标识一个调度器中的某个worker
type WorkerRef struct {
	Scheduler string
	Worker    string
}

// IsZero 零值表示调用方自己的goroutine
func (r WorkerRef) IsZero() bool {
	return r.Scheduler == "" && r.Worker == ""
}

func (r WorkerRef) String() string {
	if r.IsZero() {
		return "caller"
	}
	return r.Scheduler + "/" + r.Worker
}

// ============================================================================
// 串行worker
// ============================================================================

// scheduledTask 已提交的任务，释放后若尚未开始执行则跳过
type scheduledTask struct {
	*baseDisposable
	run func()
}

// serialWorker 用一个drain goroutine按顺序执行队列中的任务
type serialWorker struct {
	ref WorkerRef
	log *zerolog.Logger

	mu       sync.Mutex
	queue    []*scheduledTask
	running  bool
	shutdown bool
}

func newSerialWorker(ref WorkerRef, log *zerolog.Logger) *serialWorker {
	return &serialWorker{ref: ref, log: log}
}

// Schedule 提交任务
func (w *serialWorker) Schedule(run func()) (Disposable, error) {
	t := &scheduledTask{baseDisposable: newDisposable(nil), run: run}

	w.mu.Lock()
	if w.shutdown {
		w.mu.Unlock()
		return disposedDisposable(), ErrSchedulerDisposed
	}
	w.queue = append(w.queue, t)
	start := !w.running
	w.running = true
	w.mu.Unlock()

	metrics.tasksScheduled.WithLabelValues(w.ref.Scheduler).Inc()
	if start {
		go w.drain()
	}
	return t, nil
}

// drain 处理队列中的任务，任务panic被恢复并记录，worker继续运行
func (w *serialWorker) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 || w.shutdown {
			w.queue = nil
			w.running = false
			w.mu.Unlock()
			return
		}
		t := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if t.IsDisposed() {
			continue
		}

		if err := safeCall(t.run); err != nil {
			metrics.tasksFailed.WithLabelValues(w.ref.Scheduler).Inc()
			w.log.Error().Err(err).Str("worker", w.ref.String()).Msg("task panicked")
			continue
		}
		metrics.tasksCompleted.WithLabelValues(w.ref.Scheduler).Inc()
	}
}

// stop 关闭worker，丢弃尚未执行的任务
func (w *serialWorker) stop() {
	w.mu.Lock()
	w.shutdown = true
	w.queue = nil
	w.mu.Unlock()
}

// workerHandle 交给调用方的worker句柄，Dispose时执行release而不是关闭底层worker
type workerHandle struct {
	*baseDisposable
	w *serialWorker
}

func newWorkerHandle(w *serialWorker, release func()) *workerHandle {
	return &workerHandle{baseDisposable: newDisposable(release), w: w}
}

func (h *workerHandle) Name() string   { return h.w.ref.Worker }
func (h *workerHandle) Ref() WorkerRef { return h.w.ref }

func (h *workerHandle) Schedule(task func()) (Disposable, error) {
	if h.IsDisposed() {
		return disposedDisposable(), ErrSchedulerDisposed
	}
	return h.w.Schedule(task)
}

// ============================================================================
// 立即调度器
// ============================================================================

// ImmediateName 立即调度器名称
const ImmediateName = "immediate"

// immediateScheduler 在调用方goroutine中立即执行任务
type immediateScheduler struct{}

var immediate Scheduler = immediateScheduler{}

// Immediate 返回立即调度器，任务在调用方goroutine上同步执行
func Immediate() Scheduler {
	return immediate
}

func (immediateScheduler) Name() string { return ImmediateName }

func (immediateScheduler) Schedule(task func()) (Disposable, error) {
	runInline(task)
	return disposedDisposable(), nil
}

func (immediateScheduler) CreateWorker() (Worker, error) {
	return &immediateWorker{baseDisposable: newDisposable(nil)}, nil
}

// Dispose 立即调度器不可关闭
func (immediateScheduler) Dispose() {}

func (immediateScheduler) IsDisposed() bool { return false }

type immediateWorker struct {
	*baseDisposable
}

func (w *immediateWorker) Name() string { return ImmediateName }

func (w *immediateWorker) Ref() WorkerRef {
	return WorkerRef{Scheduler: ImmediateName, Worker: ImmediateName}
}

func (w *immediateWorker) Schedule(task func()) (Disposable, error) {
	if w.IsDisposed() {
		return disposedDisposable(), ErrSchedulerDisposed
	}
	runInline(task)
	return disposedDisposable(), nil
}

func runInline(task func()) {
	metrics.tasksScheduled.WithLabelValues(ImmediateName).Inc()
	if err := safeCall(task); err != nil {
		metrics.tasksFailed.WithLabelValues(ImmediateName).Inc()
		currentLogger().Error().Err(err).Str("worker", ImmediateName).Msg("task panicked")
		return
	}
	metrics.tasksCompleted.WithLabelValues(ImmediateName).Inc()
}

// ============================================================================
// 默认调度器与注册表
// ============================================================================

const (
	// ElasticName 默认elastic调度器名称
	ElasticName = "elastic"
	// ParallelName 默认parallel调度器名称
	ParallelName = "parallel"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Scheduler{ImmediateName: immediate}

	defaultsOnce    sync.Once
	defaultElastic  *ElasticScheduler
	defaultParallel *ParallelScheduler
)

// initDefaults 按环境变量配置创建默认调度器
func initDefaults() {
	cfg, err := LoadConfig()
	if err != nil {
		currentLogger().Warn().Err(err).Msg("invalid rxcore config, falling back to defaults")
		cfg = DefaultConfig()
	}

	l := currentLogger().Level(parseLevel(cfg.LogLevel))
	SetLogger(l)

	defaultElastic = NewElastic(ElasticName, WithTTL(cfg.ElasticTTL))
	defaultParallel = NewParallel(ParallelName, cfg.ParallelSize)

	registryMu.Lock()
	if _, ok := registry[ElasticName]; !ok {
		registry[ElasticName] = defaultElastic
	}
	if _, ok := registry[ParallelName]; !ok {
		registry[ParallelName] = defaultParallel
	}
	registryMu.Unlock()
}

// Elastic 默认的无界elastic调度器，适合阻塞型生产任务
func Elastic() Scheduler {
	defaultsOnce.Do(initDefaults)
	return defaultElastic
}

// Parallel 默认的固定大小parallel调度器，适合CPU型投递任务
func Parallel() Scheduler {
	defaultsOnce.Do(initDefaults)
	return defaultParallel
}

// Register 按名称注册调度器，同名调度器会被替换
func Register(s Scheduler) {
	defaultsOnce.Do(initDefaults)

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Name()] = s
}

// Lookup 按名称查找调度器
func Lookup(name string) (Scheduler, bool) {
	defaultsOnce.Do(initDefaults)

	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	return s, ok
}

// MustLookup 按名称查找调度器，不存在时panic
func MustLookup(name string) Scheduler {
	s, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("rxcore: scheduler %q is not registered", name))
	}
	return s
}
