package netprot

import (
	"fmt"
	"time"
)

// Emitter receives records as primitive writes, in order:
//
//	EncodeArrayLen(2), EncodeFloat64(ts), EncodeMapLen(n), n key/value pairs
//
// Keys are written with EncodeString. *msgpack.Encoder satisfies it. The
// decoder does no locking; an Emitter shared between goroutines must be
// serialised by the caller.
type Emitter interface {
	EncodeArrayLen(n int) error
	EncodeFloat64(v float64) error
	EncodeMapLen(n int) error
	EncodeString(s string) error
	EncodeUint(v uint64) error
	EncodeInt(v int64) error
}

// recordWriter writes one [ts, map] record and enforces the declared map
// size. The first error sticks and later writes become no-ops.
type recordWriter struct {
	emit  Emitter
	want  int
	wrote int
	err   error
}

func (w *recordWriter) begin(ts time.Time, entries int) {
	w.want = entries
	w.do(func() error { return w.emit.EncodeArrayLen(2) })
	w.do(func() error { return w.emit.EncodeFloat64(unixSeconds(ts)) })
	w.do(func() error { return w.emit.EncodeMapLen(entries) })
}

func (w *recordWriter) str(key string, v []byte) {
	w.key(key)
	w.do(func() error { return w.emit.EncodeString(string(v)) })
}

func (w *recordWriter) float(key string, v float64) {
	w.key(key)
	w.do(func() error { return w.emit.EncodeFloat64(v) })
}

func (w *recordWriter) uint(key string, v uint64) {
	w.key(key)
	w.do(func() error { return w.emit.EncodeUint(v) })
}

func (w *recordWriter) int(key string, v int64) {
	w.key(key)
	w.do(func() error { return w.emit.EncodeInt(v) })
}

func (w *recordWriter) key(k string) {
	w.wrote++
	w.do(func() error { return w.emit.EncodeString(k) })
}

func (w *recordWriter) do(fn func() error) {
	if w.err != nil {
		return
	}
	if err := fn(); err != nil {
		w.err = fmt.Errorf("%w: %w", ErrEmit, err)
	}
}

func (w *recordWriter) finish() error {
	if w.err != nil {
		return w.err
	}
	if w.wrote != w.want {
		return fmt.Errorf("%w: declared %d wrote %d", errMapSize, w.want, w.wrote)
	}
	return nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
