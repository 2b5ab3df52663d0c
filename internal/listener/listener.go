package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/danmuck/collectdin/internal/observability"
	"github.com/danmuck/collectdin/internal/protocol/netprot"
	"github.com/danmuck/collectdin/internal/sink"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MaxDatagram is the largest UDP payload the listener reads.
const MaxDatagram = 65535

var ErrNotBound = errors.New("listener: not bound")

type Config struct {
	// Name labels metrics and log events.
	Name       string
	Addr       string
	BufferSize int
	Workers    int
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "collectd"
	}
	if c.BufferSize <= 0 || c.BufferSize > MaxDatagram {
		c.BufferSize = MaxDatagram
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// Listener reads collectd datagrams from one UDP socket and decodes them on
// a fixed pool of workers. Each worker owns its read buffer and record
// buffer; only the socket and the forwarder are shared.
type Listener struct {
	cfg     Config
	decoder *netprot.Decoder
	out     sink.Forwarder
	logger  zerolog.Logger

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

func New(cfg Config, decoder *netprot.Decoder, out sink.Forwarder, logger zerolog.Logger) *Listener {
	cfg = cfg.withDefaults()
	return &Listener{
		cfg:     cfg,
		decoder: decoder,
		out:     out,
		logger:  logger.With().Str("listener", cfg.Name).Logger(),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the socket is bound.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Bound reports whether Run has bound the socket.
func (l *Listener) Bound() bool {
	select {
	case <-l.ready:
		return true
	default:
		return false
	}
}

// Addr returns the bound address, which resolves port 0 to the real port.
func (l *Listener) Addr() (net.Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.addr == nil {
		return nil, ErrNotBound
	}
	return l.addr, nil
}

// Run binds the socket and blocks until ctx is cancelled or a worker fails.
// Cancellation closes the socket and returns nil. Run may be called once.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", l.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listener: bind %s: %w", l.cfg.Addr, err)
	}
	l.mu.Lock()
	l.addr = conn.LocalAddr()
	l.mu.Unlock()
	close(l.ready)

	l.logger.Info().
		Str("addr", conn.LocalAddr().String()).
		Int("workers", l.cfg.Workers).
		Int("buffer_size", l.cfg.BufferSize).
		Msg("listening")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})
	for i := 0; i < l.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			return l.work(gctx, conn, worker)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	l.logger.Info().Msg("listener stopped")
	return nil
}

func (l *Listener) work(ctx context.Context, conn net.PacketConn, worker int) error {
	buf := make([]byte, l.cfg.BufferSize)
	out := sink.NewBuffer()
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("listener: worker %d read: %w", worker, err)
		}
		l.handle(ctx, buf[:n], from, out)
	}
}

// handle decodes one datagram and forwards whatever records it produced. A
// decode failure drops the rest of the datagram; earlier records still go out.
func (l *Listener) handle(ctx context.Context, datagram []byte, from net.Addr, out *sink.Buffer) {
	out.Reset()
	records, err := l.decoder.Decode(datagram, out.Emitter())
	observability.RecordDatagram(l.cfg.Name, len(datagram), records, netprot.Reason(err))
	if err != nil {
		l.logger.Warn().
			Err(err).
			Str("from", from.String()).
			Int("size", len(datagram)).
			Int("records", records).
			Msg("decode stopped")
	}
	if out.Len() == 0 {
		return
	}
	if err := l.out.Forward(ctx, out.Bytes()); err != nil {
		observability.RecordForwardError(l.cfg.Name)
		l.logger.Warn().Err(err).Int("records", records).Msg("forward failed")
	}
}
