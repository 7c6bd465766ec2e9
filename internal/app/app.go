package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atvirokodosprendimai/employees/internal/adapters/external"
	"github.com/atvirokodosprendimai/employees/internal/adapters/httpapi"
	"github.com/atvirokodosprendimai/employees/internal/adapters/memory"
	sqliteadapter "github.com/atvirokodosprendimai/employees/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/employees/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/employees/internal/core/ports"
	"github.com/atvirokodosprendimai/employees/internal/core/usecase"
	"github.com/atvirokodosprendimai/employees/migrations"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr            string
	Store           string
	DBPath          string
	QuoteURL        string
	JokeURL         string
	ExternalTimeout time.Duration
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config, log logrus.FieldLogger) (*http.Server, io.Closer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	repo, closer, err := openRepository(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	enricher := usecase.NewEnricher(
		external.NewQuoteClient(cfg.QuoteURL, cfg.ExternalTimeout),
		external.NewJokeClient(cfg.JokeURL, cfg.ExternalTimeout),
		cfg.ExternalTimeout,
		log,
	)
	employees := usecase.NewEmployeeService(repo, enricher)
	handler := httpapi.NewHandler(employees, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, closer, nil
}

func openRepository(ctx context.Context, cfg Config, log logrus.FieldLogger) (ports.EmployeeRepository, io.Closer, error) {
	switch cfg.Store {
	case "", StoreMemory:
		log.Info("using in-memory employee store")
		return memory.NewRepository(), resourceCloser{}, nil
	case StoreSQLite:
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	db, err := gormsqlite.Open(cfg.DBPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	applied, err := migrations.Up(ctx, writeSQLDB)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	path := cfg.DBPath
	if path == "" {
		path = "(memory)"
	}
	log.WithFields(logrus.Fields{"path": path, "migrations": applied}).Info("using sqlite employee store")
	return sqliteadapter.NewRepository(db), resourceCloser{closers: []io.Closer{db}}, nil
}
