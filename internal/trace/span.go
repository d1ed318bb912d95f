package trace

import (
	"sync/atomic"
	"time"
)

var seq, spanIDs atomic.Uint64

// NextSeq returns the next event sequence number, shared by all tracers.
func NextSeq() uint64 { return seq.Add(1) }

// NextSpanID returns a process-unique span ID.
func NextSpanID() uint64 { return spanIDs.Add(1) }

// Span is an open begin event. The zero Span and a nil *Span are inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

var inert = &Span{}

func recording(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Begin emits the begin event of a span below parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !recording(t, scope) {
		return inert
	}
	s := &Span{tracer: t, id: NextSpanID(), parent: parent, scope: scope, name: name, started: time.Now()}
	t.Emit(s.event(KindSpanBegin, s.started, "", nil))
	return s
}

// End emits the end event carrying detail and any extras, and returns the
// span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail, s.extra))
	return now.Sub(s.started)
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = map[string]string{}
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) event(kind Kind, at time.Time, detail string, extra map[string]string) *Event {
	return &Event{Time: at, Kind: kind, Scope: s.scope, SpanID: s.id, ParentID: s.parent, Name: s.name, Detail: detail, Extra: extra}
}

// Point emits an instant event at scope.
func Point(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if recording(t, scope) {
		t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Name: name, Detail: detail, Extra: extra})
	}
}

// Warn emits a recovered problem. It is recorded at every level but off,
// whatever the scope.
func Warn(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if t != nil && t.Enabled() {
		t.Emit(&Event{Time: time.Now(), Kind: KindWarn, Scope: scope, Name: name, Detail: detail, Extra: extra})
	}
}
