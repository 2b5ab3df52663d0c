package collectdin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/danmuck/collectdin/internal/config"
	"github.com/danmuck/collectdin/internal/listener"
	"github.com/danmuck/collectdin/internal/protocol/netprot"
	"github.com/danmuck/collectdin/internal/protocol/schema"
	"github.com/danmuck/collectdin/internal/server"
	"github.com/danmuck/collectdin/internal/sink"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Service wires the listener, the record sink and the admin surface for one
// process.
type Service struct {
	cfg    config.Config
	logger zerolog.Logger

	types    *schema.Registry
	out      sink.Forwarder
	closeOut func() error
	listener *listener.Listener
	admin    *server.Admin
}

// NewService loads the type database and opens the output. Close releases
// the output when Serve is not called.
func NewService(cfg config.Config, logger zerolog.Logger) (*Service, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	types, err := LoadTypes(cfg, logger)
	if err != nil {
		return nil, err
	}
	out, closeOut, err := sink.Open(cfg.Output, logger.With().Str("component", "sink").Logger())
	if err != nil {
		return nil, err
	}

	decoder := netprot.NewDecoder(types, logger.With().Str("component", "netprot").Logger())
	l := listener.New(listener.Config{
		Name:       cfg.Name,
		Addr:       cfg.Listen,
		BufferSize: cfg.BufferSize,
		Workers:    cfg.Workers,
	}, decoder, out, logger.With().Str("component", "listener").Logger())

	svc := &Service{
		cfg:      cfg,
		logger:   logger,
		types:    types,
		out:      out,
		closeOut: closeOut,
		listener: l,
	}
	if cfg.AdminAddr != "" {
		svc.admin = server.New(
			cfg.Name,
			cfg.AdminAddr,
			cfg.CorsOrigins,
			types,
			l.Bound,
			logger.With().Str("component", "admin").Logger(),
		)
	}
	return svc, nil
}

// LoadTypes builds the registry from the configured types.db files and the
// optional overlay. Missing files are skipped; when none load the built-in
// types are used. Parse errors are fatal.
func LoadTypes(cfg config.Config, logger zerolog.Logger) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	loaded := 0
	for _, path := range cfg.TypesDB {
		err := reg.LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("types.db not found, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		loaded++
	}
	if loaded == 0 {
		sets, err := schema.Builtin()
		if err != nil {
			return nil, err
		}
		if err := reg.Add(sets...); err != nil {
			return nil, err
		}
		logger.Info().Int("types", reg.Len()).Msg("using built-in types")
	}
	if cfg.TypesOverlay != "" {
		if err := reg.LoadOverlayFile(cfg.TypesOverlay); err != nil {
			return nil, err
		}
	}
	if reg.Len() == 0 {
		return nil, schema.ErrEmptyRegistry
	}
	logger.Info().Int("types", reg.Len()).Int("files", loaded).Msg("types loaded")
	return reg, nil
}

func (s *Service) Types() *schema.Registry {
	return s.types
}

func (s *Service) Listener() *listener.Listener {
	return s.listener
}

// Admin is nil when admin_addr is empty.
func (s *Service) Admin() *server.Admin {
	return s.admin
}

// Run blocks until SIGINT or SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve runs the listener and the admin surface until ctx ends or either
// fails, then closes the output.
func (s *Service) Serve(ctx context.Context) error {
	defer s.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.listener.Run(gctx)
	})
	if s.admin != nil {
		g.Go(func() error {
			return s.admin.Serve(gctx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info().Str("name", s.cfg.Name).Msg("collectdin shutdown")
	return nil
}

func (s *Service) Close() error {
	if s.closeOut == nil {
		return nil
	}
	closeOut := s.closeOut
	s.closeOut = nil
	if err := closeOut(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
