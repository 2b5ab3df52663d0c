package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Forwarder hands a chunk of encoded records to the next stage. The chunk is
// only valid for the duration of the call.
type Forwarder interface {
	Forward(ctx context.Context, chunk []byte) error
}

// WriterForwarder copies chunks verbatim to an io.Writer.
type WriterForwarder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterForwarder(w io.Writer) *WriterForwarder {
	return &WriterForwarder{w: w}
}

func (f *WriterForwarder) Forward(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.w.Write(chunk); err != nil {
		return fmt.Errorf("sink: write chunk: %w", err)
	}
	return nil
}

// LogForwarder decodes each chunk and writes one log event per record.
type LogForwarder struct {
	logger zerolog.Logger
}

func NewLogForwarder(logger zerolog.Logger) *LogForwarder {
	return &LogForwarder{logger: logger}
}

func (f *LogForwarder) Forward(ctx context.Context, chunk []byte) error {
	records, err := ReadRecords(chunk)
	for _, rec := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		event := f.logger.Info().Float64("ts", rec.Time)
		for _, key := range rec.Keys {
			event = event.Interface(key, rec.Fields[key])
		}
		event.Msg("record")
	}
	return err
}

// Open resolves an output setting: "stdout", "log", or a file path opened for
// append. The returned close func is never nil.
func Open(output string, logger zerolog.Logger) (Forwarder, func() error, error) {
	noop := func() error { return nil }
	switch strings.TrimSpace(output) {
	case "", "stdout":
		return NewWriterForwarder(os.Stdout), noop, nil
	case "log":
		return NewLogForwarder(logger), noop, nil
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("sink: open output %q: %w", output, err)
	}
	return NewWriterForwarder(file), file.Close, nil
}
