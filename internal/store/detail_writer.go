package store

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const detailBufferSize = 256

// detailWriter appends link records to a JSONL file off the hot path. The
// coordinator's slide loop never blocks on detail persistence; a full buffer
// drops the record with a warning (the flat URL file is the authoritative
// output).
type detailWriter struct {
	out     *lumberjack.Logger
	writeCh chan LinkRecord
	done    chan struct{}
	wg      sync.WaitGroup
}

func newDetailWriter(path string) *detailWriter {
	w := &detailWriter{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    25,
			MaxBackups: 3,
			LocalTime:  false,
		},
		writeCh: make(chan LinkRecord, detailBufferSize),
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()
	return w
}

func (w *detailWriter) write(rec LinkRecord) {
	select {
	case w.writeCh <- rec:
	case <-w.done:
	default:
		slog.Warn("link detail buffer full, dropping record", "url", rec.URL)
	}
}

func (w *detailWriter) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case rec := <-w.writeCh:
			w.writeRecord(rec)
		case <-w.done:
			return
		}
	}
}

func (w *detailWriter) writeRecord(rec LinkRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		slog.Error("marshal link record failed", "error", err, "url", rec.URL)
		return
	}
	if _, err := w.out.Write(append(data, '\n')); err != nil {
		slog.Error("write link record failed", "error", err)
	}
}

// close drains pending records (bounded) and closes the file.
func (w *detailWriter) close() error {
	close(w.done)
	w.wg.Wait()

	// Drain whatever the loop had not picked up yet.
	timeout := time.After(2 * time.Second)
	for {
		select {
		case rec := <-w.writeCh:
			w.writeRecord(rec)
		case <-timeout:
			slog.Warn("link detail close timeout, records may be lost")
			return w.out.Close()
		default:
			return w.out.Close()
		}
	}
}
