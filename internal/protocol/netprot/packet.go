package netprot

import (
	"encoding/binary"
	"math"

	"github.com/danmuck/collectdin/internal/protocol/schema"
	"github.com/danmuck/collectdin/internal/protocol/tlv"
)

// Value is one typed value for a VALUE part.
type Value struct {
	Type schema.DSType
	bits uint64
}

func Counter(v uint64) Value  { return Value{Type: schema.DSCounter, bits: v} }
func Gauge(v float64) Value   { return Value{Type: schema.DSGauge, bits: math.Float64bits(v)} }
func Derive(v int64) Value    { return Value{Type: schema.DSDerive, bits: uint64(v)} }
func Absolute(v uint64) Value { return Value{Type: schema.DSAbsolute, bits: v} }

// Packet builds a collectd datagram part by part. The first encoding error
// sticks and is reported by Bytes.
type Packet struct {
	buf []byte
	err error
}

func NewPacket() *Packet {
	return &Packet{}
}

func (p *Packet) Host(s string) *Packet           { return p.text(TagHost, s) }
func (p *Packet) Plugin(s string) *Packet         { return p.text(TagPlugin, s) }
func (p *Packet) PluginInstance(s string) *Packet { return p.text(TagPluginInstance, s) }
func (p *Packet) Type(s string) *Packet           { return p.text(TagType, s) }
func (p *Packet) TypeInstance(s string) *Packet   { return p.text(TagTypeInstance, s) }

func (p *Packet) Time(sec uint64) *Packet     { return p.u64(TagTime, sec) }
func (p *Packet) Interval(sec uint64) *Packet { return p.u64(TagInterval, sec) }

// TimeHR and IntervalHR take raw 2^-30 second units.
func (p *Packet) TimeHR(units uint64) *Packet     { return p.u64(TagTimeHR, units) }
func (p *Packet) IntervalHR(units uint64) *Packet { return p.u64(TagIntervalHR, units) }

// Values appends a VALUE part: count, then all type tags, then all values.
func (p *Packet) Values(vals ...Value) *Packet {
	payload := make([]byte, 2+len(vals)*valueSize)
	binary.BigEndian.PutUint16(payload, uint16(len(vals)))
	for i, v := range vals {
		payload[2+i] = byte(v.Type)
		slot := payload[2+len(vals)+8*i:]
		if v.Type == schema.DSGauge {
			binary.NativeEndian.PutUint64(slot, v.bits)
		} else {
			binary.BigEndian.PutUint64(slot, v.bits)
		}
	}
	return p.Raw(TagValues, payload)
}

// Raw appends a part with an arbitrary tag and payload.
func (p *Packet) Raw(tag Tag, payload []byte) *Packet {
	if p.err != nil {
		return p
	}
	p.buf, p.err = tlv.AppendPart(p.buf, uint16(tag), payload)
	return p
}

// Len is the encoded size so far.
func (p *Packet) Len() int {
	return len(p.buf)
}

func (p *Packet) Bytes() ([]byte, error) {
	return p.buf, p.err
}

func (p *Packet) text(tag Tag, s string) *Packet {
	payload := make([]byte, len(s)+1)
	copy(payload, s)
	return p.Raw(tag, payload)
}

func (p *Packet) u64(tag Tag, v uint64) *Packet {
	var payload [8]byte
	binary.BigEndian.PutUint64(payload[:], v)
	return p.Raw(tag, payload[:])
}
