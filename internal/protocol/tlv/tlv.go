package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderLen is the size of a part header: type(2) + length(2).
const HeaderLen = 4

// MaxPartLen is the largest length a part header can declare.
const MaxPartLen = 0xffff

var (
	ErrShortPartLength = errors.New("tlv: part length smaller than header")
	ErrTruncated       = errors.New("tlv: truncated data")
	ErrPartTooLarge    = errors.New("tlv: part too large")
)

// Part is one type-length-value unit. Payload aliases the buffer it was read
// from and is only valid while that buffer is.
type Part struct {
	Type    uint16
	Length  uint16
	Payload []byte
}

// Next reads the part at the start of buf. It returns ok=false without error
// when fewer than HeaderLen bytes remain, which callers treat as the end of
// the stream.
func Next(buf []byte) (p Part, ok bool, err error) {
	if len(buf) < HeaderLen {
		return Part{}, false, nil
	}
	p.Type = binary.BigEndian.Uint16(buf[0:2])
	p.Length = binary.BigEndian.Uint16(buf[2:4])
	if p.Length < HeaderLen {
		return p, true, fmt.Errorf("%w: type=0x%04x length=%d", ErrShortPartLength, p.Type, p.Length)
	}
	if len(buf) < int(p.Length) {
		return p, true, fmt.Errorf("%w: %d < %d", ErrTruncated, len(buf), p.Length)
	}
	p.Payload = buf[HeaderLen:p.Length]
	return p, true, nil
}

// AppendPart appends an encoded part to dst.
func AppendPart(dst []byte, typ uint16, payload []byte) ([]byte, error) {
	if len(payload) > MaxPartLen-HeaderLen {
		return dst, fmt.Errorf("%w: type=0x%04x payload=%d", ErrPartTooLarge, typ, len(payload))
	}
	dst = binary.BigEndian.AppendUint16(dst, typ)
	dst = binary.BigEndian.AppendUint16(dst, uint16(HeaderLen+len(payload)))
	return append(dst, payload...), nil
}

// Walk calls fn for every complete part in buf, in order, and returns the
// offset reached. A trailing remainder shorter than HeaderLen is ignored.
// Walk stops at the first framing error or the first error returned by fn.
func Walk(buf []byte, fn func(offset int, p Part) error) (int, error) {
	offset := 0
	for {
		p, ok, err := Next(buf[offset:])
		if !ok {
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
		if err := fn(offset, p); err != nil {
			return offset, err
		}
		offset += int(p.Length)
	}
}

// U64FromBytes reads a big-endian uint64 from the first 8 bytes of b.
func U64FromBytes(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("tlv: invalid u64 length: %d", len(b))
	}
	return binary.BigEndian.Uint64(b[:8]), nil
}
