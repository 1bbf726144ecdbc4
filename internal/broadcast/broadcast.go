// Package broadcast maintains the per-list registry of live event-stream
// subscribers and fans server-generated events out to them as SSE text frames.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/metrics"
)

// DefaultPingInterval is the keep-alive cadence; short enough that idle
// intermediaries do not cut the connection.
const DefaultPingInterval = 25 * time.Second

// subscriberBuffer bounds the per-subscriber event queue. A subscriber that
// falls this far behind starts losing events; delivery is best-effort and
// clients re-fetch on reconnect.
const subscriberBuffer = 16

// ErrClosed is returned by Serve after the broadcaster has been shut down.
var ErrClosed = errors.New("broadcaster closed")

type frame struct {
	event string
	data  []byte
}

type subscriber struct {
	ch chan frame
}

// Broadcaster owns the topic → subscriber-set registry. Topics are list IDs.
// Subscriptions are ephemeral: the last subscriber leaving a topic removes the
// topic entry entirely.
type Broadcaster struct {
	// PingInterval overrides DefaultPingInterval when positive. Set it before
	// the first Serve call.
	PingInterval time.Duration

	log     *zap.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	topics map[string]map[*subscriber]struct{}
	closed bool
	done   chan struct{}
}

// New creates an empty broadcaster.
func New(log *zap.Logger, m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{
		log:     log,
		metrics: m,
		topics:  make(map[string]map[*subscriber]struct{}),
		done:    make(chan struct{}),
	}
}

// Serve registers w as a subscriber on topic and streams frames to it until ctx
// is done, the broadcaster is closed, or a write fails. It writes a handshake
// comment immediately and a ping frame every PingInterval. The subscription is
// always unregistered before Serve returns, whatever the exit path.
//
// Serve is the only writer to w for the lifetime of the subscription; broadcast
// events reach it through a buffered channel, which also preserves the order
// in which events for the topic were broadcast.
func (b *Broadcaster) Serve(ctx context.Context, topic string, w io.Writer) error {
	sub := &subscriber{ch: make(chan frame, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	set := b.topics[topic]
	if set == nil {
		set = make(map[*subscriber]struct{})
		b.topics[topic] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	b.metrics.Subscribers.Inc()
	defer func() {
		b.unsubscribe(topic, sub)
		b.metrics.Subscribers.Dec()
	}()

	if err := b.writeRaw(w, ": connected\n\n"); err != nil {
		return err
	}

	interval := b.PingInterval
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.done:
			return nil
		case f := <-sub.ch:
			if err := b.writeFrame(w, f.event, f.data); err != nil {
				b.metrics.DeliveryFailures.Inc()
				b.log.Warn("subscriber write failed, dropping stream",
					zap.String("topic", topic), zap.Error(err))
				return err
			}
		case <-ticker.C:
			ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
			if err := b.writeFrame(w, "ping", []byte(ts)); err != nil {
				b.metrics.DeliveryFailures.Inc()
				b.log.Warn("keep-alive write failed, dropping stream",
					zap.String("topic", topic), zap.Error(err))
				return err
			}
		}
	}
}

// Broadcast enqueues a named event with a JSON payload to every subscriber of
// topic. With no subscribers it returns without serializing anything. A slow
// subscriber loses the event; nothing here blocks or fails the caller.
func (b *Broadcaster) Broadcast(topic, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.topics[topic]
	if len(set) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.log.Error("marshaling broadcast payload",
			zap.String("topic", topic), zap.String("event", event), zap.Error(err))
		return
	}

	f := frame{event: event, data: data}
	for sub := range set {
		select {
		case sub.ch <- f:
		default:
			b.metrics.DroppedEvents.Inc()
			b.log.Warn("subscriber queue full, dropping event",
				zap.String("topic", topic), zap.String("event", event))
		}
	}
	b.metrics.EventsBroadcast.WithLabelValues(event).Inc()
}

// Close wakes every active subscriber and makes subsequent Serve calls fail
// with ErrClosed. Safe to call more than once.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

func (b *Broadcaster) unsubscribe(topic string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.topics[topic]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.topics, topic)
	}
}

// subscriberCount reports the registry size for a topic.
func (b *Broadcaster) subscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func (b *Broadcaster) writeFrame(w io.Writer, event string, data []byte) error {
	return b.writeRaw(w, fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))
}

func (b *Broadcaster) writeRaw(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
