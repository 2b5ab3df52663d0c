package schema

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// DSType is a collectd data source type. The numeric values are the ones
// carried in VALUE parts on the wire.
type DSType uint8

const (
	DSCounter  DSType = 0
	DSGauge    DSType = 1
	DSDerive   DSType = 2
	DSAbsolute DSType = 3
)

func (t DSType) String() string {
	switch t {
	case DSCounter:
		return "COUNTER"
	case DSGauge:
		return "GAUGE"
	case DSDerive:
		return "DERIVE"
	case DSAbsolute:
		return "ABSOLUTE"
	default:
		return fmt.Sprintf("DSType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the four known data source types.
func (t DSType) Valid() bool {
	return t <= DSAbsolute
}

// ParseDSType accepts the type names used in types.db, case-insensitively.
func ParseDSType(raw string) (DSType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COUNTER":
		return DSCounter, nil
	case "GAUGE":
		return DSGauge, nil
	case "DERIVE":
		return DSDerive, nil
	case "ABSOLUTE":
		return DSAbsolute, nil
	default:
		return 0, fmt.Errorf("schema: unknown data source type %q", raw)
	}
}

// DataSource is one named value of a data set.
type DataSource struct {
	Name string
	Type DSType
	Min  float64
	Max  float64
}

// DataSet maps a collectd type name to its ordered value names.
type DataSet struct {
	Name    string
	Sources []DataSource
}

// Count is the number of values a VALUE part for this type must carry.
func (ds DataSet) Count() int {
	return len(ds.Sources)
}

// FieldNames returns the value names in wire order.
func (ds DataSet) FieldNames() []string {
	names := make([]string, len(ds.Sources))
	for i, src := range ds.Sources {
		names[i] = src.Name
	}
	return names
}

// Lookup resolves a type name to its data set. Implementations must be safe
// for concurrent lookups.
type Lookup interface {
	Lookup(name string) (DataSet, bool)
}

var ErrEmptyRegistry = errors.New("schema: no types loaded")

type ValidationError struct {
	Type   string
	Source string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("schema: type=%q: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema: type=%q source=%q: %s", e.Type, e.Source, e.Reason)
}

// Validate checks a data set before it is registered.
func Validate(ds DataSet) error {
	if strings.TrimSpace(ds.Name) == "" {
		return ValidationError{Reason: "missing type name"}
	}
	if len(ds.Sources) == 0 {
		return ValidationError{Type: ds.Name, Reason: "no data sources"}
	}
	if len(ds.Sources) > math.MaxUint16 {
		return ValidationError{Type: ds.Name, Reason: "too many data sources"}
	}
	seen := make(map[string]struct{}, len(ds.Sources))
	for _, src := range ds.Sources {
		if src.Name == "" {
			return ValidationError{Type: ds.Name, Reason: "empty data source name"}
		}
		if _, dup := seen[src.Name]; dup {
			return ValidationError{Type: ds.Name, Source: src.Name, Reason: "duplicate data source"}
		}
		seen[src.Name] = struct{}{}
		if !src.Type.Valid() {
			return ValidationError{Type: ds.Name, Source: src.Name, Reason: "invalid data source type"}
		}
		if !math.IsNaN(src.Min) && !math.IsNaN(src.Max) && src.Min > src.Max {
			return ValidationError{Type: ds.Name, Source: src.Name, Reason: "min greater than max"}
		}
	}
	return nil
}

// Registry is an in-memory type database. Later registrations replace
// earlier ones with the same name.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]DataSet
}

var _ Lookup = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]DataSet)}
}

// Add validates and registers data sets. Nothing is registered if any of
// them is invalid.
func (r *Registry) Add(sets ...DataSet) error {
	for _, ds := range sets {
		if err := Validate(ds); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ds := range sets {
		r.sets[ds.Name] = ds
	}
	return nil
}

func (r *Registry) Lookup(name string) (DataSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.sets[name]
	return ds, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
