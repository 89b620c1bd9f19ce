package server

import (
	"net/http"

	"github.com/Tanmoy095/authgate/internal/session"
)

// flushingWriter writes the pending session headers right before the
// status line goes out, whatever path the handler takes to write it.
type flushingWriter struct {
	http.ResponseWriter
	pending *session.Pending
}

func newFlushingWriter(w http.ResponseWriter, pending *session.Pending) *flushingWriter {
	return &flushingWriter{ResponseWriter: w, pending: pending}
}

func (w *flushingWriter) WriteHeader(status int) {
	w.pending.Flush(w.Header())
	w.ResponseWriter.WriteHeader(status)
}

func (w *flushingWriter) Write(b []byte) (int, error) {
	w.pending.Flush(w.Header())
	return w.ResponseWriter.Write(b)
}

// finish flushes for handlers that never wrote anything.
func (w *flushingWriter) finish() {
	w.pending.Flush(w.Header())
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *flushingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
