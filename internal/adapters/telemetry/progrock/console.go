package progrock

import (
	"fmt"
	"io"
	"sync"

	"github.com/vito/progrock"
)

// NewConsole creates a Recorder that renders progress as plain lines on the
// given writer, one per vertex transition. This is the writer behind the
// CLI's --progress flag; unlike a bare tape it makes the updates visible.
func NewConsole(w io.Writer) *Recorder {
	return NewRecorder(&consoleWriter{
		w:       w,
		started: make(map[string]bool),
		done:    make(map[string]bool),
	})
}

// consoleWriter is a progrock.Writer that prints vertex starts, completions
// and log output as they arrive.
type consoleWriter struct {
	mu      sync.Mutex
	w       io.Writer
	started map[string]bool
	done    map[string]bool
}

func (cw *consoleWriter) WriteStatus(update *progrock.StatusUpdate) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, v := range update.Vertexes {
		if !cw.started[v.Id] {
			cw.started[v.Id] = true
			_, _ = fmt.Fprintf(cw.w, "=> %s\n", v.Name)
		}
		if v.Completed == nil || cw.done[v.Id] {
			continue
		}
		cw.done[v.Id] = true
		if v.Error != nil {
			_, _ = fmt.Fprintf(cw.w, "✗ %s: %s\n", v.Name, *v.Error)
		} else {
			_, _ = fmt.Fprintf(cw.w, "✓ %s\n", v.Name)
		}
	}
	for _, l := range update.Logs {
		_, _ = cw.w.Write(l.Data)
	}
	return nil
}

func (cw *consoleWriter) Close() error { return nil }
