package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/corun/internal/fsm"
)

// FrameSampler wraps every Nth frame in a span so a trace shows what the
// task stack did during that frame without recording all of them.
type FrameSampler struct {
	tracer trace.Tracer
	every  uint64
	span   trace.Span
}

// NewFrameSampler samples one frame in every frames.
func NewFrameSampler(tracer trace.Tracer, every int) *FrameSampler {
	if every < 1 {
		every = 1
	}
	return &FrameSampler{tracer: tracer, every: uint64(every)}
}

// Begin starts the span for frame if it is sampled. The returned context
// carries the span and must be passed to End.
func (s *FrameSampler) Begin(ctx context.Context, frame uint64) context.Context {
	if frame%s.every != 0 {
		return ctx
	}
	ctx, s.span = s.tracer.Start(ctx, "frame",
		trace.WithAttributes(attribute.Int64("frame", int64(frame))))
	return ctx
}

// End finishes the current frame span, if any, annotating it with the
// number of live tasks.
func (s *FrameSampler) End(tasks int) {
	if s.span == nil {
		return
	}
	s.span.SetAttributes(attribute.Int("tasks", tasks))
	s.span.End()
	s.span = nil
}

// Active reports whether the current frame is being recorded.
func (s *FrameSampler) Active() bool { return s.span != nil }

// TransitionRecorder turns FSM transitions into span events on the active
// frame span, falling back to a standalone span when no frame is sampled.
type TransitionRecorder struct {
	tracer  trace.Tracer
	sampler *FrameSampler
}

// NewTransitionRecorder creates a recorder. sampler may be nil.
func NewTransitionRecorder(tracer trace.Tracer, sampler *FrameSampler) *TransitionRecorder {
	return &TransitionRecorder{tracer: tracer, sampler: sampler}
}

// Hook returns an fsm.Run callback for the machine named owner. next, if
// non-nil, is called after recording.
func (r *TransitionRecorder) Hook(owner string, next func(fsm.TransitionDebugData)) func(fsm.TransitionDebugData) {
	return func(d fsm.TransitionDebugData) {
		attrs := []attribute.KeyValue{
			attribute.String("fsm", owner),
			attribute.String("from", d.OldStateName),
			attribute.String("to", d.NewStateName),
			attribute.Int("tick", d.Tick),
		}
		if r.sampler != nil && r.sampler.Active() {
			r.sampler.span.AddEvent("fsm.transition", trace.WithAttributes(attrs...))
		} else {
			_, span := r.tracer.Start(context.Background(), "fsm.transition",
				trace.WithAttributes(attrs...))
			span.End()
		}
		if next != nil {
			next(d)
		}
	}
}
