package schema

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// DefaultTypesDB is the path collectd installs its stock types.db to.
const DefaultTypesDB = "/usr/share/collectd/types.db"

//go:embed types.db
var builtinTypesDB string

type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("schema: types.db line %d: %s", e.Line, e.Reason)
}

// Parse reads collectd types.db content:
//
//	if_octets  rx:DERIVE:0:U, tx:DERIVE:0:U
//
// Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]DataSet, error) {
	var sets []DataSet
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ds, err := parseLine(text)
		if err != nil {
			return nil, ParseError{Line: line, Reason: err.Error()}
		}
		sets = append(sets, ds)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("schema: read types.db: %w", err)
	}
	return sets, nil
}

func parseLine(text string) (DataSet, error) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 || strings.TrimSpace(text[i:]) == "" {
		return DataSet{}, fmt.Errorf("type %q has no data sources", text)
	}
	name, rest := text[:i], text[i:]
	ds := DataSet{Name: name}
	for _, field := range strings.Split(rest, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		src, err := ParseSource(field)
		if err != nil {
			return DataSet{}, err
		}
		ds.Sources = append(ds.Sources, src)
	}
	if err := Validate(ds); err != nil {
		return DataSet{}, err
	}
	return ds, nil
}

// ParseSource parses one "name:TYPE:min:max" data source spec. "U" marks an
// unbounded limit and is stored as NaN.
func ParseSource(spec string) (DataSource, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) != 4 {
		return DataSource{}, fmt.Errorf("data source %q: want name:type:min:max", spec)
	}
	typ, err := ParseDSType(parts[1])
	if err != nil {
		return DataSource{}, err
	}
	lo, err := parseLimit(parts[2])
	if err != nil {
		return DataSource{}, fmt.Errorf("data source %q min: %w", spec, err)
	}
	hi, err := parseLimit(parts[3])
	if err != nil {
		return DataSource{}, fmt.Errorf("data source %q max: %w", spec, err)
	}
	return DataSource{Name: parts[0], Type: typ, Min: lo, Max: hi}, nil
}

func parseLimit(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "U" || raw == "u" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(raw, 64)
}

// LoadFile parses a types.db file and registers its data sets.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("schema: open %s: %w", path, err)
	}
	defer f.Close()
	sets, err := Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return r.Add(sets...)
}

// LoadFiles loads each path in order, so later files override earlier ones.
func (r *Registry) LoadFiles(paths ...string) error {
	for _, path := range paths {
		if err := r.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

var (
	builtinOnce sync.Once
	builtinSets []DataSet
	builtinErr  error
)

// Builtin returns the data sets embedded in the binary: a subset of the
// stock collectd types.db.
func Builtin() ([]DataSet, error) {
	builtinOnce.Do(func() {
		builtinSets, builtinErr = Parse(strings.NewReader(builtinTypesDB))
	})
	return builtinSets, builtinErr
}

// Default returns a registry seeded with the builtin data sets.
func Default() *Registry {
	r := NewRegistry()
	sets, err := Builtin()
	if err != nil {
		panic(err)
	}
	if err := r.Add(sets...); err != nil {
		panic(err)
	}
	return r
}
