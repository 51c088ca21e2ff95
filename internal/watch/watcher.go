// Package watch follows a telemetry file being appended to by a concurrently
// running Gemini CLI process and pushes parsed records to a channel.
//
// The watcher polls the file size on a fixed short interval instead of using
// OS file notification: the bounded latency equals the poll interval, and the
// poll loop behaves identically on every platform.
package watch

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/janekbaraniewski/gemusage/internal/telemetry"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 100 * time.Millisecond

// appendBoundary splits records on the live stream. Appended data may lack
// the newline the batch parser relies on, so the pattern is tighter.
const appendBoundary = "}{"

// Event is one record pushed by the watcher.
type Event struct {
	Kind   telemetry.StreamKind
	Usage  telemetry.UsageEvent
	Tokens telemetry.TokenDelta
}

// Watcher incrementally re-reads a growing file. An unparsed trailing
// fragment is carried across poll cycles because it may be a write in
// progress that the next append completes.
type Watcher struct {
	path     string
	interval time.Duration

	events chan Event
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	// poll-cycle state, owned by the poll goroutine after Start
	offset int64
	tail   string
}

// New returns a watcher for path. A non-positive interval selects
// DefaultInterval.
func New(path string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		path:     path,
		interval: interval,
		events:   make(chan Event, 64),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Events is the stream of parsed records. It is closed after Stop once the
// poll goroutine has exited.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling. Calling it more than once is a no-op.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Stop halts polling and releases the timer. It is safe to call multiple
// times and from a signal handler.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

// Wait blocks until the poll goroutine has exited.
func (w *Watcher) Wait() {
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	size := info.Size()
	if size < w.offset {
		// Truncated or rotated out from under us; start over.
		w.offset = 0
		w.tail = ""
	}
	if size == w.offset {
		return
	}

	chunk, err := readRange(w.path, w.offset, size)
	if err != nil {
		return
	}
	w.offset = size

	w.consume(w.tail + chunk)
}

// consume splits newly appended content into record candidates and emits the
// parseable ones. A final candidate that fails to parse becomes the carried
// tail fragment; earlier failures are dropped as in the batch parser.
func (w *Watcher) consume(content string) {
	w.tail = ""
	if strings.TrimSpace(content) == "" {
		return
	}

	pieces := strings.Split(content, appendBoundary)
	for i, piece := range pieces {
		if i > 0 {
			piece = "{" + piece
		}
		if i < len(pieces)-1 {
			piece = piece + "}"
		}

		record, ok := telemetry.ParseStreamRecord(piece)
		if !ok {
			if i == len(pieces)-1 {
				w.tail = piece
			}
			continue
		}
		if record.Kind == telemetry.StreamIgnored {
			continue
		}

		w.emit(Event{Kind: record.Kind, Usage: record.Usage, Tokens: record.Tokens})
	}
}

func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.stop:
	}
}

func readRange(path string, from, to int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Seek(from, io.SeekStart); err != nil {
		return "", err
	}

	buf := make([]byte, to-from)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	return string(buf[:n]), nil
}
