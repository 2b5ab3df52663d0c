package netprot

import (
	"encoding/binary"
	"testing"
)

func u64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func TestHeaderTimeHR(t *testing.T) {
	var h Header
	if !h.Apply(TagTimeHR, u64(1<<30)) {
		t.Fatalf("expected time_hr applied")
	}
	if h.Time != 1.0 {
		t.Fatalf("expected 1.0 seconds, got %v", h.Time)
	}
	if !h.Apply(TagIntervalHR, u64(3<<29)) {
		t.Fatalf("expected interval_hr applied")
	}
	if h.Interval != 1.5 {
		t.Fatalf("expected 1.5 seconds, got %v", h.Interval)
	}
}

func TestHeaderWholeSeconds(t *testing.T) {
	var h Header
	h.Apply(TagTime, u64(1700000000))
	h.Apply(TagInterval, u64(10))
	if h.Time != 1700000000 || h.Interval != 10 {
		t.Fatalf("unexpected times: %+v", h)
	}
}

func TestHeaderShortNumericIgnored(t *testing.T) {
	h := Header{Time: 5}
	if h.Apply(TagTime, []byte{0, 0, 0, 1}) {
		t.Fatalf("short time payload should not apply")
	}
	if h.Time != 5 {
		t.Fatalf("time should be untouched, got %v", h.Time)
	}
}

func TestHeaderTextTermination(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
		ok      bool
		want    string
	}{
		{"terminated", []byte("web01\x00"), true, "web01"},
		{"empty string", []byte{0}, true, ""},
		{"embedded nul", []byte("ab\x00cd\x00"), true, "ab"},
		{"unterminated", []byte("web01"), false, ""},
		{"empty payload", nil, false, ""},
	}
	for _, tc := range cases {
		h := Header{Host: []byte("previous")}
		ok := h.Apply(TagHost, tc.payload)
		if ok != tc.ok {
			t.Fatalf("%s: applied=%v want %v", tc.name, ok, tc.ok)
		}
		want := tc.want
		if !tc.ok {
			want = "previous"
		}
		if string(h.Host) != want {
			t.Fatalf("%s: host=%q want %q", tc.name, h.Host, want)
		}
		if h.Host == nil {
			t.Fatalf("%s: host should stay set", tc.name)
		}
	}
}

func TestHeaderTextFieldsIndependent(t *testing.T) {
	var h Header
	h.Apply(TagPlugin, []byte("cpu\x00"))
	h.Apply(TagPluginInstance, []byte("0\x00"))
	h.Apply(TagType, []byte("percent\x00"))
	h.Apply(TagTypeInstance, []byte("idle\x00"))
	if string(h.Plugin) != "cpu" || string(h.PluginInstance) != "0" ||
		string(h.Type) != "percent" || string(h.TypeInstance) != "idle" {
		t.Fatalf("unexpected header: %+v", h)
	}
	if h.Host != nil {
		t.Fatalf("host should be unset")
	}
	if h.present() != 4 {
		t.Fatalf("expected 4 present fields, got %d", h.present())
	}
}

func TestHeaderUnknownAndValueTagsNotApplied(t *testing.T) {
	var h Header
	if h.Apply(TagValues, []byte{0, 0}) {
		t.Fatalf("values part must not be applied to header")
	}
	if h.Apply(Tag(0x0200), []byte("sig\x00")) {
		t.Fatalf("unknown part must not be applied")
	}
	if h.present() != 0 {
		t.Fatalf("header should be empty: %+v", h)
	}
}

func TestTagString(t *testing.T) {
	if TagTypeInstance.String() != "type_instance" {
		t.Fatalf("unexpected name: %s", TagTypeInstance)
	}
	if Tag(0x0210).String() != "unknown(0x0210)" || Tag(0x0210).Known() {
		t.Fatalf("unexpected unknown tag: %s", Tag(0x0210))
	}
}
