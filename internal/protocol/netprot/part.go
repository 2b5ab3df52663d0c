package netprot

import "fmt"

// Tag is the 16-bit type code of a collectd part.
type Tag uint16

// Part tags from the collectd binary protocol.
const (
	TagHost           Tag = 0x0000
	TagTime           Tag = 0x0001
	TagPlugin         Tag = 0x0002
	TagPluginInstance Tag = 0x0003
	TagType           Tag = 0x0004
	TagTypeInstance   Tag = 0x0005
	TagValues         Tag = 0x0006
	TagInterval       Tag = 0x0007
	TagTimeHR         Tag = 0x0008
	TagIntervalHR     Tag = 0x0009
)

var tagNames = [...]string{
	TagHost:           "host",
	TagTime:           "time",
	TagPlugin:         "plugin",
	TagPluginInstance: "plugin_instance",
	TagType:           "type",
	TagTypeInstance:   "type_instance",
	TagValues:         "values",
	TagInterval:       "interval",
	TagTimeHR:         "time_hr",
	TagIntervalHR:     "interval_hr",
}

// Known reports whether t is handled by the decoder. Unknown parts, which
// include collectd's signature and encryption parts, are skipped.
func (t Tag) Known() bool {
	return int(t) < len(tagNames)
}

func (t Tag) String() string {
	if t.Known() {
		return tagNames[t]
	}
	return fmt.Sprintf("unknown(0x%04x)", uint16(t))
}
