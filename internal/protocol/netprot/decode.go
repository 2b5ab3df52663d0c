package netprot

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/danmuck/collectdin/internal/protocol/schema"
	"github.com/danmuck/collectdin/internal/protocol/tlv"
	"github.com/rs/zerolog"
)

// Decoder converts collectd datagrams into records. It holds no per-call
// state and is safe for concurrent use when its Lookup is.
type Decoder struct {
	types  schema.Lookup
	logger zerolog.Logger
	now    func() time.Time
}

func NewDecoder(types schema.Lookup, logger zerolog.Logger) *Decoder {
	return &Decoder{types: types, logger: logger, now: time.Now}
}

// WithClock returns a copy of d that stamps records using now.
func (d *Decoder) WithClock(now func() time.Time) *Decoder {
	c := *d
	c.now = now
	return &c
}

// Decode walks one datagram and writes a record to emit for every value part.
// It returns the number of records written. The first fatal error stops the
// walk; records written before it are not retracted and no partial record is
// written for the failing part. Header state accumulates across the whole
// datagram and is never reset between value parts.
func (d *Decoder) Decode(buf []byte, emit Emitter) (int, error) {
	var hdr Header
	records := 0
	end, err := tlv.Walk(buf, func(offset int, p tlv.Part) error {
		tag := Tag(p.Type)
		if tag == TagValues {
			if err := d.decodeValues(&hdr, p.Payload, emit); err != nil {
				return &PartError{Offset: offset, Tag: tag, Err: err}
			}
			records++
			return nil
		}
		if !hdr.Apply(tag, p.Payload) {
			d.logger.Debug().
				Stringer("part", tag).
				Int("offset", offset).
				Int("size", len(p.Payload)).
				Msg("skip part")
		}
		return nil
	})
	if err == nil {
		return records, nil
	}
	var pe *PartError
	if !errors.As(err, &pe) {
		err = &PartError{Offset: end, Tag: Tag(binary.BigEndian.Uint16(buf[end:])), Err: err}
	}
	return records, err
}

// Decode is a convenience wrapper around a Decoder with no logging.
func Decode(buf []byte, types schema.Lookup, emit Emitter) (int, error) {
	return NewDecoder(types, zerolog.Nop()).Decode(buf, emit)
}
