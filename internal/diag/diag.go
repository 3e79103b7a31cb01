// Package diag provides types.Diagnostics sinks: an lgr-backed logger, an
// in-memory recorder, and helpers to fan out and discard reports.
package diag

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Logger writes each failure as a [WARN] line.
type Logger struct {
	l lgr.L
}

// NewLogger returns a Logger writing through l. A nil l uses lgr.Std.
func NewLogger(l lgr.L) *Logger {
	if l == nil {
		l = lgr.Std
	}
	return &Logger{l: l}
}

// Report implements types.Diagnostics.
func (d *Logger) Report(f types.Failure) {
	if f.Key == "" && f.Kind == types.ClearFailure {
		d.l.Logf("[WARN] %s: %v", f.Message, f.Err)
		return
	}
	d.l.Logf("[WARN] %s, key=%q: %v", f.Message, f.Key, f.Err)
}

// NewFileLogger returns an lgr logger writing into a size-rotated file,
// and the closer for that file. maxSizeMB <= 0 uses lumberjack's default.
func NewFileLogger(path string, maxSizeMB int, opts ...lgr.Option) (*lgr.Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		Compress:   true,
	}
	opts = append([]lgr.Option{lgr.Out(w), lgr.Err(io.Discard), lgr.Msec}, opts...)
	return lgr.New(opts...), w
}

// Record is one reported failure.
type Record struct {
	ID   string
	Time time.Time
	types.Failure
}

// Recorder keeps every reported failure in memory, in report order.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report implements types.Diagnostics.
func (r *Recorder) Report(f types.Failure) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{ID: id.String(), Time: time.Now().UTC(), Failure: f})
}

// Records returns a copy of the recorded failures.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

// Len returns the number of recorded failures.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Multi reports to every sink in order.
type Multi []types.Diagnostics

// Report implements types.Diagnostics.
func (m Multi) Report(f types.Failure) {
	for _, d := range m {
		if d != nil {
			d.Report(f)
		}
	}
}

// Discard drops every report.
var Discard types.Diagnostics = discard{}

type discard struct{}

func (discard) Report(types.Failure) {}
