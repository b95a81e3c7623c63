package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/calvinalkan/diskcache/internal/config"
	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// session carries what commands share within one invocation: the resolved
// config and a store opened on first use.
type session struct {
	cfg        config.Config
	log        *slog.Logger
	in         io.Reader
	env        map[string]string
	cleanEvery time.Duration

	store *diskcache.Store
}

func newSession(cfg config.Config, log *slog.Logger, in io.Reader, env map[string]string) *session {
	return &session{cfg: cfg, log: log, in: in, env: env}
}

// open returns the started store, creating the cache root if needed.
// One-shot commands run without the sweeper; see Run.
func (s *session) open(ctx context.Context) (*diskcache.Store, error) {
	if s.store != nil {
		return s.store, nil
	}

	root := s.cfg.CachePathAbs

	err := os.MkdirAll(root, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}

	opts := s.cfg.Options(s.log)
	opts.CleanEvery = s.cleanEvery

	store, err := diskcache.New(opts)
	if err != nil {
		return nil, err
	}

	err = store.Start(ctx)
	if err != nil {
		return nil, err
	}

	s.store = store

	return store, nil
}

func (s *session) close() {
	if s.store != nil {
		s.store.Stop()
		s.store = nil
	}
}
