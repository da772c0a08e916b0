package workerpool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	worker int
	calls  *atomic.Int64
}

type double struct{ n int }

func (m double) Handle(_ context.Context, c counter) (int, error) {
	c.calls.Add(1)
	return m.n * 2, nil
}

type whoAmI struct{}

func (whoAmI) Handle(_ context.Context, c counter) (int, error) {
	return c.worker, nil
}

type failing struct{}

var errBoom = errors.New("boom")

func (failing) Handle(context.Context, counter) (int, error) {
	return 0, errBoom
}

type panicking struct{}

func (panicking) Handle(context.Context, counter) (int, error) {
	panic("kaboom")
}

// blocking holds its worker until release is closed.
type blocking struct {
	started chan<- struct{}
	release <-chan struct{}
	done    *atomic.Bool
}

func (m blocking) Handle(_ context.Context, _ counter) (int, error) {
	if m.started != nil {
		m.started <- struct{}{}
	}
	<-m.release
	if m.done != nil {
		m.done.Store(true)
	}
	return 1, nil
}

func newCounterPool(t *testing.T, size int, opts ...Option) (*Pool[counter], *atomic.Int64) {
	t.Helper()
	calls := &atomic.Int64{}
	p, err := New("test", size, func(w int) (counter, error) {
		return counter{worker: w, calls: calls}, nil
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, calls
}

func TestNewValidation(t *testing.T) {
	factory := func(int) (counter, error) { return counter{}, nil }

	_, err := New("zero", 0, factory)
	assert.Error(t, err)

	_, err = New("neg-queue", 1, factory, WithQueueSize(-1))
	assert.Error(t, err)

	errFactory := errors.New("no resource")
	_, err = New("bad-factory", 2, func(w int) (counter, error) {
		if w == 1 {
			return counter{}, errFactory
		}
		return counter{}, nil
	})
	assert.ErrorIs(t, err, errFactory)
}

func TestFactoryCalledPerWorker(t *testing.T) {
	var seen sync.Map
	p, err := New("per-worker", 3, func(w int) (counter, error) {
		seen.Store(w, true)
		return counter{worker: w, calls: &atomic.Int64{}}, nil
	})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 3, p.Size())
	assert.Equal(t, "per-worker", p.Name())
	for w := 0; w < 3; w++ {
		_, ok := seen.Load(w)
		assert.True(t, ok, "worker %d has no resource", w)
	}
}

func TestAsk(t *testing.T) {
	p, calls := newCounterPool(t, 2)

	got, err := Ask[counter, int](context.Background(), p, double{n: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.EqualValues(t, 1, calls.Load())
}

func TestAskHandlerError(t *testing.T) {
	p, _ := newCounterPool(t, 1)

	_, err := Ask[counter, int](context.Background(), p, failing{})
	assert.ErrorIs(t, err, errBoom)
}

func TestManyConcurrentSenders(t *testing.T) {
	p, calls := newCounterPool(t, 4)

	const n = 200
	var wg sync.WaitGroup
	results := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Ask[counter, int](context.Background(), p, double{n: i})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 2*i, results[i])
	}
	assert.EqualValues(t, n, calls.Load())
}

func TestWorkersRunInParallel(t *testing.T) {
	p, _ := newCounterPool(t, 3)

	started := make(chan struct{}, 3)
	release := make(chan struct{})
	futures := make([]*Future[int], 3)
	for i := range futures {
		f, err := Send[counter, int](p, blocking{started: started, release: release})
		require.NoError(t, err)
		futures[i] = f
	}

	for i := 0; i < 3; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 3 workers picked up work", i)
		}
	}
	close(release)

	for _, f := range futures {
		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}
}

func TestOneMessageAtATimePerWorker(t *testing.T) {
	p, _ := newCounterPool(t, 1)

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	first, err := Send[counter, int](p, blocking{started: started, release: release})
	require.NoError(t, err)
	<-started

	second, err := Send[counter, int](p, whoAmI{})
	require.NoError(t, err)

	select {
	case <-second.Done():
		t.Fatal("second message ran while the only worker was busy")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, p.Pending())

	close(release)
	_, err = first.Await(context.Background())
	require.NoError(t, err)
	w, err := second.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, w)
}

func TestQueueFull(t *testing.T) {
	p, _ := newCounterPool(t, 1, WithQueueSize(1))

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	defer close(release)

	_, err := Send[counter, int](p, blocking{started: started, release: release})
	require.NoError(t, err)
	<-started

	_, err = Send[counter, int](p, double{n: 1})
	require.NoError(t, err)

	_, err = Send[counter, int](p, double{n: 2})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestAwaitCancelledMessageStillRuns(t *testing.T) {
	p, _ := newCounterPool(t, 1)

	release := make(chan struct{})
	done := &atomic.Bool{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Ask[counter, int](ctx, p, blocking{release: release, done: done})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	// Close drains the mailbox, so the abandoned message has finished after it.
	p.Close()
	assert.True(t, done.Load())
}

func TestPanicIsRecovered(t *testing.T) {
	p, _ := newCounterPool(t, 1)

	_, err := Ask[counter, int](context.Background(), p, panicking{})
	assert.ErrorIs(t, err, ErrWorkerPanic)

	// The worker survives.
	got, err := Ask[counter, int](context.Background(), p, double{n: 5})
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestCloseDrainsAndRejects(t *testing.T) {
	p, calls := newCounterPool(t, 1)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	_, err := Send[counter, int](p, blocking{started: started, release: release})
	require.NoError(t, err)
	<-started

	queued := make([]*Future[int], 5)
	for i := range queued {
		queued[i], err = Send[counter, int](p, double{n: i})
		require.NoError(t, err)
	}

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()
	close(release)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}

	for i, f := range queued {
		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2*i, v)
	}
	assert.EqualValues(t, 5, calls.Load())

	_, err = Send[counter, int](p, double{n: 1})
	assert.ErrorIs(t, err, ErrPoolClosed)

	// Closing twice is a no-op.
	p.Close()
}

func TestPoolMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p, _ := newCounterPool(t, 2, WithMetrics(m.Pool))

	_, err := Ask[counter, int](context.Background(), p, double{n: 1})
	require.NoError(t, err)
	_, err = Ask[counter, int](context.Background(), p, failing{})
	require.Error(t, err)
	// Outcomes are recorded after the future completes; Close waits for them.
	p.Close()

	expected := `
# HELP quill_pool_messages_handled_total Messages handled by a worker pool
# TYPE quill_pool_messages_handled_total counter
quill_pool_messages_handled_total{message="double",outcome="ok",pool="test"} 1
quill_pool_messages_handled_total{message="failing",outcome="error",pool="test"} 1
# HELP quill_pool_size Configured number of workers
# TYPE quill_pool_size gauge
quill_pool_size{pool="test"} 2
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"quill_pool_messages_handled_total", "quill_pool_size")
	assert.NoError(t, err)
}

func TestMessageKind(t *testing.T) {
	assert.Equal(t, "double", messageKind(double{}))
	assert.Equal(t, "double", messageKind(&double{}))
	assert.Equal(t, "Future", messageKind(&Future[int]{}))
}
