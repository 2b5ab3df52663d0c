package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/collectdin/internal/protocol/netprot"
	"github.com/danmuck/collectdin/internal/protocol/schema"
)

const hrUnitsPerSecond = 1 << 30

// build encodes one datagram stamped with now.
func (o options) build(now time.Time) ([]byte, error) {
	vals, err := parseValues(o.values)
	if err != nil {
		return nil, err
	}
	p := netprot.NewPacket().Host(o.host)
	if o.highRes {
		p.TimeHR(toHR(float64(now.UnixNano()) / float64(time.Second))).
			IntervalHR(toHR(o.interval.Seconds()))
	} else {
		p.Time(uint64(now.Unix())).Interval(uint64(o.interval / time.Second))
	}
	if o.plugin != "" {
		p.Plugin(o.plugin)
	}
	if o.pluginInstance != "" {
		p.PluginInstance(o.pluginInstance)
	}
	p.Type(o.typ)
	if o.typeInstance != "" {
		p.TypeInstance(o.typeInstance)
	}
	return p.Values(vals...).Bytes()
}

func toHR(seconds float64) uint64 {
	return uint64(seconds * hrUnitsPerSecond)
}

// parseValues reads "gauge:0.5,derive:-3" into typed values.
func parseValues(raw string) ([]netprot.Value, error) {
	var out []netprot.Value
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		kindRaw, num, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("value %q: want kind:number", item)
		}
		kind, err := schema.ParseDSType(kindRaw)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", item, err)
		}
		v, err := parseValue(kind, num)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", item, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	return out, nil
}

func parseValue(kind schema.DSType, num string) (netprot.Value, error) {
	switch kind {
	case schema.DSGauge:
		f, err := strconv.ParseFloat(num, 64)
		return netprot.Gauge(f), err
	case schema.DSDerive:
		n, err := strconv.ParseInt(num, 10, 64)
		return netprot.Derive(n), err
	case schema.DSCounter:
		n, err := strconv.ParseUint(num, 10, 64)
		return netprot.Counter(n), err
	default:
		n, err := strconv.ParseUint(num, 10, 64)
		return netprot.Absolute(n), err
	}
}
