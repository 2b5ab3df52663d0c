package netprot

import (
	"bytes"

	"github.com/danmuck/collectdin/internal/protocol/tlv"
)

// hrScale converts collectd high-resolution time (2^-30 s units) to seconds.
const hrScale = 1 << 30

// Header is the metadata accumulated while walking one datagram. Text fields
// are views into the datagram (nil means unset) and must not be retained
// after Decode returns. A zero Time or Interval means unset.
type Header struct {
	Time           float64
	Interval       float64
	Host           []byte
	Plugin         []byte
	PluginInstance []byte
	Type           []byte
	TypeInstance   []byte
}

// Apply folds one non-value part into h. It returns false when the part was
// not applied: unknown tags, strings without a NUL terminator and numeric
// payloads shorter than 8 bytes. Those leave h untouched.
func (h *Header) Apply(tag Tag, payload []byte) bool {
	switch tag {
	case TagHost:
		return setText(&h.Host, payload)
	case TagPlugin:
		return setText(&h.Plugin, payload)
	case TagPluginInstance:
		return setText(&h.PluginInstance, payload)
	case TagType:
		return setText(&h.Type, payload)
	case TagTypeInstance:
		return setText(&h.TypeInstance, payload)
	case TagTime:
		return setSeconds(&h.Time, payload)
	case TagInterval:
		return setSeconds(&h.Interval, payload)
	case TagTimeHR:
		return setHighRes(&h.Time, payload)
	case TagIntervalHR:
		return setHighRes(&h.Interval, payload)
	default:
		return false
	}
}

// present counts the header entries a record map will carry.
func (h *Header) present() int {
	n := 0
	for _, set := range [...]bool{
		h.Type != nil,
		h.TypeInstance != nil,
		h.Time > 0,
		h.Interval > 0,
		h.Plugin != nil,
		h.PluginInstance != nil,
		h.Host != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// cstring returns the text of a NUL-terminated payload, up to the first NUL.
func cstring(payload []byte) ([]byte, bool) {
	n := len(payload)
	if n == 0 || payload[n-1] != 0 {
		return nil, false
	}
	return payload[:bytes.IndexByte(payload, 0)], true
}

func setText(dst *[]byte, payload []byte) bool {
	s, ok := cstring(payload)
	if ok {
		*dst = s
	}
	return ok
}

func setSeconds(dst *float64, payload []byte) bool {
	v, err := tlv.U64FromBytes(payload)
	if err != nil {
		return false
	}
	*dst = float64(v)
	return true
}

func setHighRes(dst *float64, payload []byte) bool {
	v, err := tlv.U64FromBytes(payload)
	if err != nil {
		return false
	}
	*dst = float64(v) / hrScale
	return true
}
