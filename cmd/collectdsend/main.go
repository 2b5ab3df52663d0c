// collectdsend writes collectd network datagrams, for exercising a listener
// without a running collectd.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/danmuck/collectdin/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	logger := logging.Component("collectdsend")

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "collectdsend: %v\n", err)
		os.Exit(2)
	}

	conn, err := net.Dial("udp", opts.addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "collectdsend: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	for i := 0; i < opts.count; i++ {
		datagram, err := opts.build(time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "collectdsend: %v\n", err)
			os.Exit(1)
		}
		if _, err := conn.Write(datagram); err != nil {
			fmt.Fprintf(os.Stderr, "collectdsend: %v\n", err)
			os.Exit(1)
		}
		logger.Debug().Int("seq", i).Int("bytes", len(datagram)).Msg("sent")
		if i+1 < opts.count {
			time.Sleep(opts.every)
		}
	}
	logger.Info().Str("addr", opts.addr).Int("datagrams", opts.count).Msg("done")
}

type options struct {
	addr           string
	host           string
	plugin         string
	pluginInstance string
	typ            string
	typeInstance   string
	values         string
	interval       time.Duration
	highRes        bool
	count          int
	every          time.Duration
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("collectdsend", flag.ContinueOnError)
	fs.StringVar(&o.addr, "addr", "127.0.0.1:25826", "listener UDP address")
	fs.StringVar(&o.host, "host", hostname(), "host field")
	fs.StringVar(&o.plugin, "plugin", "", "plugin field")
	fs.StringVar(&o.pluginInstance, "plugin-instance", "", "plugin_instance field")
	fs.StringVar(&o.typ, "type", "gauge", "type field, must exist in the receiver's types.db")
	fs.StringVar(&o.typeInstance, "type-instance", "", "type_instance field")
	fs.StringVar(&o.values, "values", "gauge:1", "comma separated kind:value list (counter, gauge, derive, absolute)")
	fs.DurationVar(&o.interval, "interval", 10*time.Second, "interval field")
	fs.BoolVar(&o.highRes, "hr", true, "send high resolution time and interval parts")
	fs.IntVar(&o.count, "count", 1, "datagrams to send")
	fs.DurationVar(&o.every, "every", time.Second, "delay between datagrams")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.count < 1 {
		return options{}, fmt.Errorf("count must be positive")
	}
	if _, err := parseValues(o.values); err != nil {
		return options{}, err
	}
	return o, nil
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return name
}
