package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/cache"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/dashboard"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// env wires the services a command needs from a tally data directory.
type env struct {
	dir       string
	cfg       *config.Config
	log       zerolog.Logger
	store     *store.Store
	cache     cache.Cache
	ledger    *ledger.Service
	dashboard *dashboard.Service
	profile   model.Profile
}

func openEnv(dir string) (*env, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading %s (did you run \"tally init\"?): %w", config.FileName, err)
	}

	log := newLogger(cfg.Log.Level)

	st, err := store.Open(filepath.Join(dir, cfg.Database.File))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	p, err := st.GetProfileByName(cfg.Profile.Name)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("loading profile %q: %w", cfg.Profile.Name, err)
	}

	c := cache.NewMemory()
	ldg := ledger.NewService(st, c, log)
	return &env{
		dir:       dir,
		cfg:       cfg,
		log:       log,
		store:     st,
		cache:     c,
		ledger:    ldg,
		dashboard: dashboard.NewService(st, c, ldg),
		profile:   p,
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
