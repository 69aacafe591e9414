// Cache operator for rxcore
// 热发布者：上游最多执行一次，结果（值或错误）重放给所有订阅者
package rxcore

import (
	"slices"
	"sync"
	"sync/atomic"
)

// cacheState 缓存状态机 Unset → InProgress → Done，单调且不可逆
type cacheState uint8

const (
	cacheUnset cacheState = iota
	cacheInProgress
	cacheDone
)

// replayCache 捕获上游的一次执行并重放。
// 上游在缓存自己的内部订阅上运行，任何一个下游订阅者取消都不会中断共享的生产。
// 缓存保存完整的Item，实时投递保留上游的worker标记。
type replayCache[T any] struct {
	upstream source[T]

	mu       sync.Mutex
	state    cacheState
	items    []Item[T]
	terminal *Item[T]
	inners   []*replayInner[T]
}

// replayInner 一个下游订阅者的重放游标，wip保证同一订阅者的投递串行
type replayInner[T any] struct {
	sub        *Subscription
	observer   Observer[T]
	idx        int
	terminated bool
	wip        atomic.Int32
}

func newReplayCache[T any](upstream source[T]) *replayCache[T] {
	return &replayCache[T]{upstream: upstream}
}

// source 第一个订阅者触发上游执行，其余订阅者登记后等待或直接重放
func (c *replayCache[T]) source() source[T] {
	return func(sub *Subscription, observer Observer[T]) {
		in := &replayInner[T]{sub: sub, observer: observer}

		c.mu.Lock()
		first := c.state == cacheUnset
		if first {
			c.state = cacheInProgress
		}
		if c.state != cacheDone {
			c.inners = append(c.inners, in)
		}
		c.mu.Unlock()

		if first {
			c.connect()
		}
		c.drain(in, false)
	}
}

// connect 在内部订阅上执行上游，只有第一个终止事件生效
func (c *replayCache[T]) connect() {
	inner := newSubscription()
	observer := func(item Item[T]) {
		if item.Kind != KindNext {
			inner.terminate(item.via, item.Err, func() { c.finish(item) })
			return
		}

		c.mu.Lock()
		if c.state == cacheDone {
			c.mu.Unlock()
			return
		}
		c.items = append(c.items, item)
		inners := slices.Clone(c.inners)
		c.mu.Unlock()

		for _, in := range inners {
			c.drain(in, true)
		}
	}

	if err := safeCall(func() { c.upstream(inner, observer) }); err != nil {
		observer(errorItem[T](err))
	}
}

func (c *replayCache[T]) finish(item Item[T]) {
	c.mu.Lock()
	c.terminal = &item
	c.state = cacheDone
	inners := c.inners
	c.inners = nil
	c.mu.Unlock()

	for _, in := range inners {
		c.drain(in, true)
	}
}

// drain 把游标之后的数据以及终止事件投递给订阅者。
// live为false时在订阅者自己的goroutine上重放，worker标记被清除。
func (c *replayCache[T]) drain(in *replayInner[T], live bool) {
	if in.wip.Add(1) != 1 {
		return
	}

	missed := int32(1)
	for {
		for !in.terminated && !in.sub.isCancelled() {
			c.mu.Lock()
			if in.idx < len(c.items) {
				item := c.items[in.idx]
				in.idx++
				c.mu.Unlock()
				if !live {
					item.via = WorkerRef{}
				}
				in.observer(item)
				continue
			}
			terminal := c.terminal
			c.mu.Unlock()

			if terminal != nil {
				in.terminated = true
				item := *terminal
				if !live {
					item.via = WorkerRef{}
				}
				in.observer(item)
			}
			break
		}

		missed = in.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}
