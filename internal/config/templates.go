package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a commented starter config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `name = "collectdin"

# collectd network plugin traffic.
listen = "0.0.0.0:25826"
workers = 4
buffer_size = 65535

# Admin HTTP (/health, /ready, /metrics, /types). Empty disables it.
admin_addr = "127.0.0.1:9125"
cors_origins = ["http://localhost:3000"]

# Later files override earlier ones. Missing files are skipped and the
# built-in types are used when none load.
typesdb = ["/usr/share/collectd/types.db"]
types_overlay = ""

# stdout | log | path to a file
output = "stdout"
`
