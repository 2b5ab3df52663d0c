package schema

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/danmuck/collectdin/internal/testutil/testlog"
)

func TestParseStockLines(t *testing.T) {
	testlog.Start(t)
	in := `
# comment
cpu                     value:DERIVE:0:U
if_octets	rx:DERIVE:0:U, tx:DERIVE:0:U
load                    shortterm:GAUGE:0:5000, midterm:GAUGE:0:5000, longterm:GAUGE:0:5000
`
	sets, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("expected 3 data sets, got %d", len(sets))
	}
	if sets[0].Name != "cpu" || sets[0].Count() != 1 || sets[0].Sources[0].Type != DSDerive {
		t.Fatalf("unexpected cpu data set: %+v", sets[0])
	}
	if !math.IsNaN(sets[0].Sources[0].Max) || sets[0].Sources[0].Min != 0 {
		t.Fatalf("unexpected cpu limits: %+v", sets[0].Sources[0])
	}
	if got := sets[1].FieldNames(); len(got) != 2 || got[0] != "rx" || got[1] != "tx" {
		t.Fatalf("unexpected if_octets fields: %v", got)
	}
	if got := sets[2].FieldNames(); strings.Join(got, ",") != "shortterm,midterm,longterm" {
		t.Fatalf("unexpected load fields: %v", got)
	}
}

func TestParseReportsLine(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"no sources":  "cpu value:DERIVE:0:U\nmemory",
		"bad type":    "cpu value:DERIVE:0:U\nmemory value:FLOAT:0:U",
		"short spec":  "cpu value:DERIVE:0:U\nmemory value:GAUGE",
		"bad limit":   "cpu value:DERIVE:0:U\nmemory value:GAUGE:zero:U",
		"duplicate":   "cpu value:DERIVE:0:U\nif_octets rx:DERIVE:0:U, rx:DERIVE:0:U",
		"min above":   "cpu value:DERIVE:0:U\nmemory value:GAUGE:10:1",
		"empty field": "cpu value:DERIVE:0:U\nmemory :GAUGE:0:U",
	}
	for name, in := range cases {
		_, err := Parse(strings.NewReader(in))
		var pe ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected ParseError, got %v", name, err)
		}
		if pe.Line != 2 {
			t.Fatalf("%s: expected line 2, got %d", name, pe.Line)
		}
	}
}

func TestRegistryLaterDefinitionWins(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "a.db")
	second := filepath.Join(dir, "b.db")
	if err := os.WriteFile(first, []byte("cpu value:DERIVE:0:U\nusers value:GAUGE:0:65535\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(second, []byte("cpu user:DERIVE:0:U, system:DERIVE:0:U\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadFiles(first, second); err != nil {
		t.Fatalf("load: %v", err)
	}
	ds, ok := r.Lookup("cpu")
	if !ok || ds.Count() != 2 {
		t.Fatalf("expected overridden cpu with 2 sources, got %+v ok=%v", ds, ok)
	}
	if _, ok := r.Lookup("users"); !ok {
		t.Fatalf("expected users to survive")
	}
	if got := strings.Join(r.Names(), ","); got != "cpu,users" {
		t.Fatalf("unexpected names: %s", got)
	}
}

func TestRegistryLoadFileMissing(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	err := r.LoadFile(filepath.Join(t.TempDir(), "missing.db"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRegistryAddIsAllOrNothing(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	err := r.Add(
		DataSet{Name: "ok", Sources: []DataSource{{Name: "value", Type: DSGauge}}},
		DataSet{Name: "bad"},
	)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Type != "bad" {
		t.Fatalf("expected ValidationError for bad, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected nothing registered, got %d", r.Len())
	}
}

func TestDefaultRegistryHasStockTypes(t *testing.T) {
	testlog.Start(t)
	r := Default()
	for name, count := range map[string]int{"cpu": 1, "load": 3, "if_octets": 2, "df": 2, "counter": 1} {
		ds, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("missing builtin type %q", name)
		}
		if ds.Count() != count {
			t.Fatalf("type %q: expected %d sources, got %d", name, count, ds.Count())
		}
	}
}

func TestRegistryConcurrentLookups(t *testing.T) {
	testlog.Start(t)
	r := Default()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := r.Lookup("cpu"); !ok {
					t.Errorf("lookup failed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLoadOverlay(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "types.toml")
	content := `
[types.queue_depth]
sources = ["value:GAUGE:0:U"]

[types.http_requests]
sources = ["ok:DERIVE:0:U", "failed:DERIVE:0:U"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewRegistry()
	if err := r.LoadOverlayFile(path); err != nil {
		t.Fatalf("load overlay: %v", err)
	}
	ds, ok := r.Lookup("http_requests")
	if !ok || strings.Join(ds.FieldNames(), ",") != "ok,failed" {
		t.Fatalf("unexpected overlay data set: %+v ok=%v", ds, ok)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 types, got %d", r.Len())
	}
}

func TestLoadOverlayRejectsUnknownKeys(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "types.toml")
	content := `
[types.queue_depth]
sources = ["value:GAUGE:0:U"]
source = ["spare:GAUGE:0:U"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadOverlay(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDSTypeString(t *testing.T) {
	if DSGauge.String() != "GAUGE" || DSType(9).String() != "DSType(9)" {
		t.Fatalf("unexpected DSType strings: %s %s", DSGauge, DSType(9))
	}
	if DSType(4).Valid() {
		t.Fatalf("DSType(4) should be invalid")
	}
}
