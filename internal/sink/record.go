package sink

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrMalformedRecord = errors.New("sink: malformed record")

// Record is the read-back form of one emitted [timestamp, map] pair. Keys
// keeps the order the map was written in.
type Record struct {
	Time   float64
	Keys   []string
	Fields map[string]any
}

// Text returns a string field, or "" when absent or not a string.
func (r Record) Text(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Float returns a numeric field as float64.
func (r Record) Float(key string) (float64, bool) {
	switch v := r.Fields[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// Uint returns a non-negative integer field. MessagePack keeps no signedness
// for small positive integers, so both integer forms are accepted.
func (r Record) Uint(key string) (uint64, bool) {
	switch v := r.Fields[key].(type) {
	case uint64:
		return v, true
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	}
	return 0, false
}

// Int returns a signed integer field.
func (r Record) Int(key string) (int64, bool) {
	switch v := r.Fields[key].(type) {
	case int64:
		return v, true
	case uint64:
		if v <= 1<<63-1 {
			return int64(v), true
		}
	}
	return 0, false
}

// ReadRecords decodes a chunk of consecutive records. Integers come back as
// int64 or uint64 and floats as float64.
func ReadRecords(chunk []byte) ([]Record, error) {
	r := bytes.NewReader(chunk)
	dec := msgpack.NewDecoder(r)
	var out []Record
	for r.Len() > 0 {
		rec, err := readRecord(dec)
		if err != nil {
			return out, fmt.Errorf("record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func readRecord(dec *msgpack.Decoder) (Record, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return Record{}, err
	}
	if n != 2 {
		return Record{}, fmt.Errorf("%w: array len %d", ErrMalformedRecord, n)
	}
	ts, err := dec.DecodeFloat64()
	if err != nil {
		return Record{}, err
	}
	size, err := dec.DecodeMapLen()
	if err != nil {
		return Record{}, err
	}
	if size < 0 {
		return Record{}, fmt.Errorf("%w: nil map", ErrMalformedRecord)
	}
	rec := Record{
		Time:   ts,
		Keys:   make([]string, 0, size),
		Fields: make(map[string]any, size),
	}
	for i := 0; i < size; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return Record{}, err
		}
		val, err := dec.DecodeInterfaceLoose()
		if err != nil {
			return Record{}, fmt.Errorf("field %q: %w", key, err)
		}
		rec.Keys = append(rec.Keys, key)
		rec.Fields[key] = val
	}
	return rec, nil
}
