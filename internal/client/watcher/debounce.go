package watcher

import (
	"sync"
	"time"
)

// Op is what happened to a path once bursts are coalesced.
type Op int

const (
	OpCreate Op = iota
	OpModify
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is a settled change of one path, relative to the watched root.
type Event struct {
	Path string
	Op   Op
	At   time.Time
}

// debouncer holds events back until a path has been quiet for delay.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*pending
	out     chan Event
	done    chan struct{}
	stopped bool
}

type pending struct {
	ev    Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: map[string]*pending{},
		out:     make(chan Event, 64),
		done:    make(chan struct{}),
	}
}

// add records op for path. Remove wins over everything; a create followed by
// writes stays a create.
func (d *debouncer) add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	now := time.Now()
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
		switch {
		case op == OpRemove:
			p.ev.Op = OpRemove
		case p.ev.Op == OpCreate && op == OpModify:
		case p.ev.Op == OpRemove && op == OpCreate:
			p.ev.Op = OpCreate
		case p.ev.Op != OpRemove:
			p.ev.Op = op
		}
		p.ev.At = now
		p.timer = time.AfterFunc(d.delay, func() { d.emit(path) })
		return
	}

	d.pending[path] = &pending{
		ev:    Event{Path: path, Op: op, At: now},
		timer: time.AfterFunc(d.delay, func() { d.emit(path) }),
	}
}

func (d *debouncer) emit(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	delete(d.pending, path)
	d.mu.Unlock()
	if !ok {
		return
	}

	select {
	case d.out <- p.ev:
	case <-d.done:
	}
}

// flush emits every pending event now.
func (d *debouncer) flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for path, p := range d.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	d.mu.Unlock()

	for _, path := range paths {
		d.emit(path)
	}
}

func (d *debouncer) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// stop drops pending events. Events already emitted stay readable.
func (d *debouncer) stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	d.pending = map[string]*pending{}
	d.mu.Unlock()

	close(d.done)
}
