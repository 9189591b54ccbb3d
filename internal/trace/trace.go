// Package trace records the ordered, timestamped diagnostic steps of a scan or
// extraction and packages them with the operation outcome.
package trace

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TimestampLayout prefixes every trace line.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Collector accumulates trace lines for a single operation. It is not safe
// for concurrent use; each operation owns its collector.
type Collector struct {
	op    string
	now   func() time.Time
	lines []string
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the clock used to timestamp steps.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// New creates a collector for the named operation.
func New(op string, opts ...Option) *Collector {
	c := &Collector{op: op, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Step appends one timestamped line. A nil collector discards the step.
func (c *Collector) Step(format string, args ...any) {
	if c == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.lines = append(c.lines, c.now().UTC().Format(TimestampLayout)+" "+msg)
	zap.L().Debug(msg, zap.String("op", c.op))
}

// Lines returns a copy of the accumulated steps.
func (c *Collector) Lines() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of recorded steps.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

// Op returns the operation name.
func (c *Collector) Op() string {
	if c == nil {
		return ""
	}
	return c.op
}

// Result is the outcome every top-level operation returns: a success flag,
// whatever data was produced (possibly partial), the trace and an error message.
type Result[T any] struct {
	OK    bool     `json:"ok" yaml:"ok"`
	Data  T        `json:"data" yaml:"data"`
	Trace []string `json:"trace" yaml:"trace"`
	Error string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Success builds a successful result from the collector's trace.
func Success[T any](c *Collector, data T) Result[T] {
	return Result[T]{OK: true, Data: data, Trace: c.Lines()}
}

// Failure builds a failed result, keeping partial data and the trace.
func Failure[T any](c *Collector, data T, err error) Result[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result[T]{OK: false, Data: data, Trace: c.Lines(), Error: msg}
}

// Run executes fn as the outermost boundary of an operation. Errors and panics
// are converted into a failed Result; data written through the pointer before
// a failure is preserved. Deferred cleanups inside fn run, and trace, before
// the panic is recorded.
func Run[T any](c *Collector, fn func(data *T) error) (res Result[T]) {
	var data T
	defer func() {
		if r := recover(); r != nil {
			err := eris.Errorf("%s: unexpected panic: %v", c.Op(), r)
			c.Step("aborted: %v", r)
			zap.L().Error("operation panicked", zap.String("op", c.Op()), zap.Any("panic", r))
			res = Failure(c, data, err)
		}
	}()

	if err := fn(&data); err != nil {
		c.Step("failed: %s", err)
		return Failure(c, data, err)
	}
	c.Step("completed")
	return Success(c, data)
}
