// Stream tests for rxcore
// Stream 多值发布者测试
package rxcore

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamJustDeliversInOrder(t *testing.T) {
	var order []string
	sub := Just(1, 2, 3).
		DoOnNext(func(v int) error {
			order = append(order, "doOnNext")
			return nil
		}).
		DoOnComplete(func() error {
			order = append(order, "doOnComplete")
			return nil
		}).
		Subscribe(
			func(v int) { order = append(order, "onNext") },
			func(error) { order = append(order, "onError") },
			func() { order = append(order, "onComplete") },
		)

	require.True(t, sub.IsDisposed())
	assert.Equal(t, []string{
		"doOnNext", "onNext",
		"doOnNext", "onNext",
		"doOnNext", "onNext",
		"doOnComplete", "onComplete",
	}, order)
}

func TestStreamRecorderSequence(t *testing.T) {
	rec := newRecorder[int]()
	rec.subscribeStream(Just(1, 2, 3))
	assert.Equal(t, []string{"next:1", "next:2", "next:3", "complete"}, rec.snapshot())
}

func TestStreamIsCold(t *testing.T) {
	var runs atomic.Int32
	stream := Generate(func(_ context.Context, emit func(int32) bool) error {
		run := runs.Add(1)
		emit(run)
		emit(run * 10)
		return nil
	})

	first, err := stream.Collect(context.Background())
	require.NoError(t, err)
	second, err := stream.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 10}, first)
	assert.Equal(t, []int32{2, 20}, second)
	assert.Equal(t, int32(2), runs.Load())
}

func TestStreamFailureMidSequence(t *testing.T) {
	boom := errors.New("boom")
	stream := Generate(func(_ context.Context, emit func(int) bool) error {
		emit(1)
		emit(2)
		return boom
	})

	rec := newRecorder[int]()
	sub := rec.subscribeStream(stream)

	assert.Equal(t, []string{"next:1", "next:2", "error:boom"}, rec.snapshot())
	assert.ErrorIs(t, sub.Err(), boom)

	values, err := stream.Collect(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, values)
}

func TestStreamOnErrorReturnAppendsFallback(t *testing.T) {
	stream := Generate(func(_ context.Context, emit func(int) bool) error {
		emit(1)
		emit(2)
		return errors.New("boom")
	}).OnErrorReturn(9)

	rec := newRecorder[int]()
	rec.subscribeStream(stream)
	assert.Equal(t, []string{"next:1", "next:2", "next:9", "complete"}, rec.snapshot())
}

func TestStreamHookFailureStopsProducer(t *testing.T) {
	boom := errors.New("rejected")
	var emitted []int

	stream := Generate(func(_ context.Context, emit func(int) bool) error {
		for i := 1; i <= 5; i++ {
			emitted = append(emitted, i)
			if !emit(i) {
				return nil
			}
		}
		return nil
	}).DoOnNext(func(v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})

	rec := newRecorder[int]()
	rec.subscribeStream(stream)

	assert.Equal(t, []int{1, 2}, emitted)
	assert.Equal(t, []int{1}, rec.valuesSnapshot())
	assert.ErrorIs(t, rec.lastErr(), boom)

	var cbErr *CallbackError
	require.ErrorAs(t, rec.lastErr(), &cbErr)
	assert.Equal(t, "doOnNext", cbErr.Hook)
}

func TestStreamDoOnCompleteFailure(t *testing.T) {
	boom := errors.New("complete hook failed")
	rec := newRecorder[int]()
	rec.subscribeStream(Just(1).DoOnComplete(func() error { return boom }))

	assert.Equal(t, []int{1}, rec.valuesSnapshot())
	assert.ErrorIs(t, rec.lastErr(), boom)
	assert.NotContains(t, rec.snapshot(), "complete")
}

func TestStreamConsumerPanicTerminatesSubscription(t *testing.T) {
	var errs []error
	var values []int

	sub := Just(1, 2, 3).Subscribe(func(v int) {
		if v == 2 {
			panic("bad consumer")
		}
		values = append(values, v)
	}, func(err error) {
		errs = append(errs, err)
	}, nil)

	require.True(t, sub.IsDisposed())
	assert.Equal(t, []int{1}, values)
	require.Len(t, errs, 1)

	var cbErr *CallbackError
	require.ErrorAs(t, errs[0], &cbErr)
	assert.Equal(t, "onNext", cbErr.Hook)

	var pe *PanicError
	assert.ErrorAs(t, errs[0], &pe)
}

func TestStreamFactories(t *testing.T) {
	ctx := context.Background()

	values, err := FromSlice([]string{"a", "b"}).Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, values)

	values, err = FromSeq(slices.Values([]string{"x", "y", "z"})).Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, values)

	empty, err := Empty[int]().Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	boom := errors.New("boom")
	_, err = Error[int](boom).Collect(ctx)
	assert.ErrorIs(t, err, boom)

	seq2 := func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		yield(0, boom)
	}
	partial, err := FromSeq2(seq2).Collect(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, partial)
}

func TestStreamBlockLast(t *testing.T) {
	last, ok, err := Just(4, 5, 6).BlockLast(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, last)

	_, ok, err = Empty[int]().BlockLast(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSingleAsStream(t *testing.T) {
	values, err := SingleJust("only").AsStream().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, values)
}

func TestStreamOnErrorResume(t *testing.T) {
	values, err := Generate(func(_ context.Context, emit func(int) bool) error {
		emit(1)
		return errors.New("boom")
	}).OnErrorResume(func(error) Stream[int] {
		return Just(7, 8)
	}).Collect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 8}, values)
}
