// Package explain accumulates selection and rejection traces so content
// authors can see why an item was or wasn't shown.
package explain

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/persona-engine/internal/types"
)

// MaxRejectedSample bounds the rejected list kept per context. Enough signal
// to debug a gate, without turning explain into a full audit log.
const MaxRejectedSample = 8

// Recorder delivers explain payloads over two independent channels: an
// optional caller-supplied collector and a debug-gated log. Either, both, or
// neither may be active; neither affects pipeline output.
type Recorder struct {
	log       *zap.Logger
	collector types.Collector
	debug     bool
	capture   bool
	runID     string

	mu     sync.Mutex
	traces map[string]types.ExplainPayload
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCollector installs a collector callback. Collector panics are caught
// and logged; they never interrupt the pipeline.
func WithCollector(c types.Collector) Option {
	return func(r *Recorder) { r.collector = c }
}

// WithDebug enables the log delivery channel.
func WithDebug(debug bool) Option {
	return func(r *Recorder) { r.debug = debug }
}

// WithCapture keeps payloads in memory for retrieval via Traces.
func WithCapture(capture bool) Option {
	return func(r *Recorder) { r.capture = capture }
}

// NewRecorder builds a Recorder. A nil logger silences the log channel.
func NewRecorder(log *zap.Logger, opts ...Option) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		log:    log,
		runID:  uuid.NewString(),
		traces: make(map[string]types.ExplainPayload),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record delivers one trace for a logical context name. The target is the
// ctx prefix before the first colon. The rejected list is truncated to
// MaxRejectedSample entries.
func (r *Recorder) Record(ctx string, contextTags []string, selected, rejected []types.ExplainEntry) {
	if len(rejected) > MaxRejectedSample {
		rejected = rejected[:MaxRejectedSample]
	}
	if selected == nil {
		selected = []types.ExplainEntry{}
	}
	if rejected == nil {
		rejected = []types.ExplainEntry{}
	}
	if contextTags == nil {
		contextTags = []string{}
	}

	payload := types.ExplainPayload{
		Target:      types.TargetFromCtx(ctx),
		Ctx:         ctx,
		ContextTags: contextTags,
		Selected:    selected,
		Rejected:    rejected,
	}

	if r.capture {
		r.mu.Lock()
		r.traces[ctx] = payload
		r.mu.Unlock()
	}

	if r.collector != nil {
		r.deliver(ctx, payload)
	}

	if r.debug {
		r.log.Debug("explain",
			zap.String("run_id", r.runID),
			zap.String("ctx", ctx),
			zap.String("target", payload.Target),
			zap.Int("selected", len(selected)),
			zap.Int("rejected", len(rejected)),
			zap.Any("payload", payload))
	}
}

// deliver invokes the collector, containing any panic it raises.
func (r *Recorder) deliver(ctx string, payload types.ExplainPayload) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("explain collector failed",
				zap.String("ctx", ctx),
				zap.Any("panic", rec))
		}
	}()
	r.collector(ctx, payload)
}

// Trace returns the captured payload for a context name, if capture is on.
func (r *Recorder) Trace(ctx string) (types.ExplainPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.traces[ctx]
	return payload, ok
}

// Traces returns all captured payloads keyed by context name, in stable
// (sorted) key order for iteration by callers that render them.
func (r *Recorder) Traces() ([]string, map[string]types.ExplainPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.traces))
	out := make(map[string]types.ExplainPayload, len(r.traces))
	for k, v := range r.traces {
		keys = append(keys, k)
		out[k] = v
	}
	sort.Strings(keys)
	return keys, out
}

// RunID identifies this recorder's lifetime in log output.
func (r *Recorder) RunID() string {
	return r.runID
}
