package broadcast

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/metrics"
)

// recordWriter captures frames written by the subscriber goroutine so the test
// goroutine can inspect them.
type recordWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *recordWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *recordWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func newTestBroadcaster() *Broadcaster {
	return New(zap.NewNop(), metrics.New())
}

// startSubscriber runs Serve in the background and waits until the
// subscription is registered and the handshake was written.
func startSubscriber(t *testing.T, b *Broadcaster, topic string, w *recordWriter) (cancel context.CancelFunc, done chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() {
		done <- b.Serve(ctx, topic, w)
	}()
	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), ": connected\n\n")
	}, time.Second, time.Millisecond)
	return cancel, done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		t.Fatal("subscriber did not shut down")
		return nil
	}
}

func TestBroadcastWithZeroSubscribers(t *testing.T) {
	b := newTestBroadcaster()
	// Must be a cheap no-op: no panic, no registry entry.
	b.Broadcast("nobody-home", "todoCreated", map[string]string{"x": "1"})
	assert.Equal(t, 0, b.subscriberCount("nobody-home"))
}

func TestSubscriberReceivesBroadcast(t *testing.T) {
	b := newTestBroadcaster()
	w := &recordWriter{}
	cancel, done := startSubscriber(t, b, "list1", w)

	b.Broadcast("list1", "todoCreated", map[string]string{"x": "1"})

	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), "event: todoCreated\ndata: {\"x\":\"1\"}\n\n")
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, waitDone(t, done))
	assert.Equal(t, 0, b.subscriberCount("list1"), "registry must shrink on disconnect")
}

func TestTopicIsolation(t *testing.T) {
	b := newTestBroadcaster()
	w1 := &recordWriter{}
	w2 := &recordWriter{}
	cancel1, done1 := startSubscriber(t, b, "list1", w1)
	cancel2, done2 := startSubscriber(t, b, "list2", w2)

	b.Broadcast("list1", "todoCreated", map[string]string{"x": "1"})

	require.Eventually(t, func() bool {
		return strings.Contains(w1.String(), "todoCreated")
	}, time.Second, time.Millisecond)

	// Give a stray delivery a chance to show up before asserting it did not.
	time.Sleep(20 * time.Millisecond)
	assert.NotContains(t, w2.String(), "todoCreated",
		"subscriber on list2 must never observe list1 events")

	cancel1()
	cancel2()
	require.NoError(t, waitDone(t, done1))
	require.NoError(t, waitDone(t, done2))
}

func TestBroadcastAfterDisconnectWritesNothing(t *testing.T) {
	b := newTestBroadcaster()
	w := &recordWriter{}
	cancel, done := startSubscriber(t, b, "list1", w)

	cancel()
	require.NoError(t, waitDone(t, done))
	require.Equal(t, 0, b.subscriberCount("list1"))

	before := w.String()
	b.Broadcast("list1", "todoDeleted", map[string]string{"todoId": "t1"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, w.String())
}

func TestEventsArriveInBroadcastOrder(t *testing.T) {
	b := newTestBroadcaster()
	w := &recordWriter{}
	cancel, done := startSubscriber(t, b, "list1", w)

	const n = 10
	for i := 0; i < n; i++ {
		b.Broadcast("list1", "todoUpdated", map[string]int{"seq": i})
	}

	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), fmt.Sprintf("{\"seq\":%d}", n-1))
	}, time.Second, time.Millisecond)

	out := w.String()
	last := -1
	for i := 0; i < n; i++ {
		idx := strings.Index(out, fmt.Sprintf("{\"seq\":%d}", i))
		require.GreaterOrEqual(t, idx, 0, "event %d missing", i)
		assert.Greater(t, idx, last, "event %d out of order", i)
		last = idx
	}

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestKeepAlivePing(t *testing.T) {
	b := newTestBroadcaster()
	b.PingInterval = 10 * time.Millisecond
	w := &recordWriter{}
	cancel, done := startSubscriber(t, b, "list1", w)

	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), "event: ping\ndata: ")
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestCloseUnblocksSubscribersAndRejectsNew(t *testing.T) {
	b := newTestBroadcaster()
	w := &recordWriter{}
	cancel, done := startSubscriber(t, b, "list1", w)
	defer cancel()

	b.Close()
	require.NoError(t, waitDone(t, done))

	err := b.Serve(context.Background(), "list1", &recordWriter{})
	assert.ErrorIs(t, err, ErrClosed)
}

// blockingWriter lets the handshake through, then stalls every write until
// released. Only the subscriber goroutine ever calls Write.
type blockingWriter struct {
	handshakeDone bool
	release       chan struct{}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	if !w.handshakeDone {
		w.handshakeDone = true
		return len(p), nil
	}
	<-w.release
	return len(p), nil
}

func TestSlowSubscriberDropsEventsWithoutBlocking(t *testing.T) {
	m := metrics.New()
	b := New(zap.NewNop(), m)
	w := &blockingWriter{release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- b.Serve(ctx, "list1", w)
	}()
	require.Eventually(t, func() bool {
		return b.subscriberCount("list1") == 1
	}, time.Second, time.Millisecond)

	// Far more events than the subscriber buffer can hold; Broadcast must
	// return promptly and count the overflow as dropped.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Broadcast("list1", "todoUpdated", map[string]int{"seq": i})
	}
	assert.Greater(t, testutil.ToFloat64(m.DroppedEvents), 0.0)

	close(w.release)
	cancel()
	require.NoError(t, waitDone(t, done))
}
