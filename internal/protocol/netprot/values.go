package netprot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/collectdin/internal/protocol/schema"
)

// valueSize is the wire size of one value: a 1-byte type tag plus 8 bytes.
const valueSize = 1 + 8

// decodeValues validates one VALUE payload against the accumulated header and
// the type schema, then writes a single record. Every check runs before the
// first write so a rejected part never leaves a partial record behind.
func (d *Decoder) decodeValues(hdr *Header, payload []byte, emit Emitter) error {
	if hdr.Type == nil {
		return ErrMissingType
	}
	if len(payload) < 2 {
		return fmt.Errorf("%w (size=%d)", ErrCorruptSize, len(payload))
	}
	count := int(binary.BigEndian.Uint16(payload))
	if len(payload) != 2+count*valueSize {
		return fmt.Errorf("%w (size=%d, count=%d)", ErrCorruptSize, len(payload), count)
	}

	ds, ok := d.types.Lookup(string(hdr.Type))
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, hdr.Type)
	}
	if ds.Count() != count {
		return fmt.Errorf("%w for %q (%d != %d)", ErrFieldCountMismatch, hdr.Type, ds.Count(), count)
	}

	kinds := payload[2 : 2+count]
	for i, k := range kinds {
		if !schema.DSType(k).Valid() {
			return fmt.Errorf("%w %d at index %d", ErrUnknownDataSourceType, k, i)
		}
	}
	raw := payload[2+count:]

	w := recordWriter{emit: emit}
	w.begin(d.now(), hdr.present()+count)

	w.str("type", hdr.Type)
	if hdr.TypeInstance != nil {
		w.str("type_instance", hdr.TypeInstance)
	}
	if hdr.Time > 0 {
		w.float("time", hdr.Time)
	}
	if hdr.Interval > 0 {
		w.float("interval", hdr.Interval)
	}
	if hdr.Plugin != nil {
		w.str("plugin", hdr.Plugin)
	}
	if hdr.PluginInstance != nil {
		w.str("plugin_instance", hdr.PluginInstance)
	}
	if hdr.Host != nil {
		w.str("host", hdr.Host)
	}

	for i, src := range ds.Sources {
		v := raw[8*i : 8*i+8]
		switch schema.DSType(kinds[i]) {
		case schema.DSCounter, schema.DSAbsolute:
			w.uint(src.Name, binary.BigEndian.Uint64(v))
		case schema.DSGauge:
			// collectd writes gauges in host byte order, not network order.
			w.float(src.Name, math.Float64frombits(binary.NativeEndian.Uint64(v)))
		case schema.DSDerive:
			w.int(src.Name, int64(binary.BigEndian.Uint64(v)))
		}
	}
	return w.finish()
}
