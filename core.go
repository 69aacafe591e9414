// Package rxcore provides a minimal reactive-stream execution core for Go
// 响应式流执行核心：冷/热发布者、订阅语义、调度切换以及错误传播与恢复
package rxcore

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ============================================================================
// 核心类型定义
// ============================================================================

// Kind 通知类型
type Kind uint8

const (
	// KindNext 数据项
	KindNext Kind = iota
	// KindError 错误终止
	KindError
	// KindComplete 正常完成
	KindComplete
)

// String 返回通知类型名称
func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Item 表示流中的一个通知，包含值、错误或完成信号
type Item[T any] struct {
	Kind  Kind
	Value T
	Err   error

	// via 最近一次把该通知交接过来的调度边界
	via WorkerRef
}

// IsError 检查是否为错误通知
func (item Item[T]) IsError() bool {
	return item.Kind == KindError
}

// IsComplete 检查是否为完成通知
func (item Item[T]) IsComplete() bool {
	return item.Kind == KindComplete
}

// IsTerminal 检查是否为终止通知（错误或完成）
func (item Item[T]) IsTerminal() bool {
	return item.Kind != KindNext
}

func nextItem[T any](value T) Item[T] {
	return Item[T]{Kind: KindNext, Value: value}
}

func errorItem[T any](err error) Item[T] {
	return Item[T]{Kind: KindError, Err: err}
}

func completeItem[T any]() Item[T] {
	return Item[T]{Kind: KindComplete}
}

// ============================================================================
// 函数类型定义
// ============================================================================

// Observer 下游观察者函数类型，每个操作符都是对Observer的改写
type Observer[T any] func(item Item[T])

// source 发布者的订阅入口，在每次Subscribe时被调用
type source[T any] func(sub *Subscription, observer Observer[T])

// ============================================================================
// 生命周期管理
// ============================================================================

// Disposable 可释放资源的接口
type Disposable interface {
	// Dispose 释放资源
	Dispose()
	// IsDisposed 检查是否已释放
	IsDisposed() bool
}

// baseDisposable 基础可释放资源实现
type baseDisposable struct {
	disposed int32
	action   func()
}

// newDisposable 创建基础可释放资源
func newDisposable(action func()) *baseDisposable {
	return &baseDisposable{action: action}
}

// disposedDisposable 返回一个已释放的资源
func disposedDisposable() Disposable {
	d := &baseDisposable{}
	d.Dispose()
	return d
}

// Dispose 释放资源，action只执行一次
func (d *baseDisposable) Dispose() {
	if atomic.CompareAndSwapInt32(&d.disposed, 0, 1) {
		if d.action != nil {
			d.action()
		}
	}
}

// IsDisposed 检查是否已释放
func (d *baseDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// CompositeDisposable 组合式资源管理器
type CompositeDisposable struct {
	mu        sync.Mutex
	disposed  bool
	resources []Disposable
}

// NewCompositeDisposable 创建组合式资源管理器
func NewCompositeDisposable() *CompositeDisposable {
	return &CompositeDisposable{}
}

// Add 添加可释放资源，已释放时立即释放新资源
func (cd *CompositeDisposable) Add(disposable Disposable) {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		disposable.Dispose()
		return
	}
	cd.resources = append(cd.resources, disposable)
	cd.mu.Unlock()
}

// Len 当前管理的资源数量
func (cd *CompositeDisposable) Len() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return len(cd.resources)
}

// Dispose 释放所有资源
func (cd *CompositeDisposable) Dispose() {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	for _, resource := range resources {
		resource.Dispose()
	}
}

// IsDisposed 检查是否已释放
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.disposed
}

// ============================================================================
// 工具函数
// ============================================================================

// safeCall 执行函数并把panic转换为*PanicError
func safeCall(action func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	action()
	return nil
}
