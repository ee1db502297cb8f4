// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

// Package stream frames discovery progress as server-sent events, one JSON
// object per message. The stream is implicitly terminated by a done or error
// event; a transport-level disconnect before that is the consumer's signal that
// the run was cut short.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ProgressEvent struct {
	Type    string `json:"type"`
	Folder  string `json:"folder"`
	Scanned int    `json:"scanned"`
}

type FileEvent struct {
	Type string `json:"type"`
	Id   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type DoneEvent struct {
	Type  string `json:"type"`
	Total int    `json:"total"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func Progress(folder string, scanned int) ProgressEvent {
	return ProgressEvent{Type: "progress", Folder: folder, Scanned: scanned}
}

func File(id, name, path string) FileEvent {
	return FileEvent{Type: "file", Id: id, Name: name, Path: path}
}

func Done(total int) DoneEvent {
	return DoneEvent{Type: "done", Total: total}
}

func Error(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}

// Emitter writes events to a single consumer in emission order. It is not safe
// for concurrent senders, the producer is expected to be a single goroutine.
type Emitter struct {
	w      http.ResponseWriter
	f      http.Flusher
	failed bool
}

func NewEmitter(w http.ResponseWriter) (*Emitter, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &Emitter{w: w, f: f}, nil
}

// Send writes one event frame and flushes it. A write failure marks the emitter
// failed; the producer must stop scheduling further work once that happens.
func (e *Emitter) Send(event interface{}) error {
	if e.failed {
		return fmt.Errorf("consumer is gone")
	}
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.w, "data: %s\n\n", b)
	if err != nil {
		e.failed = true
		return err
	}
	e.f.Flush()
	return nil
}

// Failed reports whether a previous Send could not reach the consumer.
func (e *Emitter) Failed() bool {
	return e.failed
}
