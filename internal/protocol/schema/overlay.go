package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

type overlayFile struct {
	Types map[string]overlayType `toml:"types"`
}

type overlayType struct {
	Sources []string `toml:"sources"`
}

// LoadOverlay reads extra data sets from a TOML file:
//
//	[types.queue_depth]
//	sources = ["value:GAUGE:0:U"]
//
// Unknown keys are rejected so typos do not silently drop a type.
func LoadOverlay(path string) ([]DataSet, error) {
	var raw overlayFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load overlay %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("schema: overlay %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	names := make([]string, 0, len(raw.Types))
	for name := range raw.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]DataSet, 0, len(names))
	for _, name := range names {
		ds := DataSet{Name: name}
		for _, spec := range raw.Types[name].Sources {
			src, err := ParseSource(spec)
			if err != nil {
				return nil, fmt.Errorf("schema: overlay type %q: %w", name, err)
			}
			ds.Sources = append(ds.Sources, src)
		}
		if err := Validate(ds); err != nil {
			return nil, err
		}
		sets = append(sets, ds)
	}
	return sets, nil
}

// LoadOverlayFile registers the data sets from a TOML overlay.
func (r *Registry) LoadOverlayFile(path string) error {
	sets, err := LoadOverlay(path)
	if err != nil {
		return err
	}
	return r.Add(sets...)
}
