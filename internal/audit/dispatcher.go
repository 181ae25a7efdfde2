package audit

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// secretMetadataKeys are substrings that mark a metadata key as credential
// material. Matching keys are removed before an event is queued.
var secretMetadataKeys = []string{"password", "hash", "token", "secret"}

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher asynchronously forwards audit events to a sink from a single
// goroutine. Events are stamped and scrubbed on the caller's goroutine, so a
// sink only ever sees a timestamped record without credential metadata.
// A nil *Dispatcher accepts and discards events.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
	now       func() time.Time

	dropped       atomic.Uint64
	dropMu        sync.Mutex
	droppedByType map[string]uint64
}

// NewDispatcher starts a dispatcher, or returns nil when cfg is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:           cfg,
		sink:          sink,
		ch:            make(chan Event, cfg.BufferSize),
		done:          make(chan struct{}),
		now:           time.Now,
		droppedByType: make(map[string]uint64),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues event. With DropIfFull a full buffer drops the event and
// counts it against its event type; otherwise Emit blocks until there is
// space, ctx is done or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = d.prepare(event)

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.recordDrop(event.EventType)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close stops accepting events, delivers what is queued and waits for the
// worker. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many events were discarded on a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// DroppedByType returns a copy of the drop counts keyed by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return map[string]uint64{}
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()

	out := make(map[string]uint64, len(d.droppedByType))
	for k, v := range d.droppedByType {
		out[k] = v
	}
	return out
}

func (d *Dispatcher) recordDrop(eventType string) {
	d.dropped.Add(1)
	d.dropMu.Lock()
	d.droppedByType[eventType]++
	d.dropMu.Unlock()
}

// prepare stamps a missing timestamp, normalizes it to UTC and strips
// credential-looking metadata. The caller's map is never mutated.
func (d *Dispatcher) prepare(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now()
	}
	event.Timestamp = event.Timestamp.UTC()

	scrub := false
	for k := range event.Metadata {
		if isSecretKey(k) {
			scrub = true
			break
		}
	}
	if !scrub {
		return event
	}

	clean := make(map[string]string, len(event.Metadata))
	for k, v := range event.Metadata {
		if !isSecretKey(k) {
			clean[k] = v
		}
	}
	event.Metadata = clean
	return event
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range secretMetadataKeys {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
