// Package progrock provides the progrock implementation of the telemetry
// adapter, rendering live per-cell build progress.
package progrock

import (
	"context"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"

	"go.trai.ch/pcell/internal/core/ports"
)

// Recorder implements ports.Tracer using the progrock library. Every span
// becomes a vertex on the tape, named after the cell being built.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start records a new vertex for the named unit of work.
func (r *Recorder) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &Span{vertex: v}
}

// EmitPlan records the planned cells as a single vertex so the tape shows
// the full build up front.
func (r *Recorder) EmitPlan(_ context.Context, cellNames []string) {
	v := r.rec.Vertex(digest.FromString("plan"), "plan")
	for _, name := range cellNames {
		_, _ = fmt.Fprintln(v.Stdout(), name)
	}
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write streams build output onto the vertex.
func (s *Span) Write(p []byte) (n int, err error) {
	return s.vertex.Stdout().Write(p)
}

// RecordError marks the span as failed when it ends.
func (s *Span) RecordError(err error) {
	s.err = err
}

// SetAttribute logs a key-value pair onto the vertex.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// End completes the vertex with any recorded error.
func (s *Span) End() {
	s.vertex.Done(s.err)
}

var _ ports.Tracer = (*Recorder)(nil)
