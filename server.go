package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/api"
	"github.com/erikbos/cinetrack/catalog"
	"github.com/erikbos/cinetrack/catalogfile"
	"github.com/erikbos/cinetrack/config"
	"github.com/erikbos/cinetrack/database"
	"github.com/erikbos/cinetrack/logging"
	"github.com/erikbos/cinetrack/metrics"
	"github.com/erikbos/cinetrack/poster"
	"github.com/erikbos/cinetrack/search"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log := logger.With().Str("component", "server").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("filename", cfg.Database.Filename).Msg("opening database")
	repo, err := database.New(&database.Options{
		Filename: cfg.Database.Filename,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer repo.Close()
	repo.StartBackgroundJobs(ctx)

	if cfg.CatalogFile != "" {
		if err := importCatalog(ctx, cfg.CatalogFile, repo, nil, logger); err != nil {
			return err
		}
	}

	index, err := search.New(logger)
	if err != nil {
		return err
	}
	defer index.Close()
	movies, err := repo.ListMovies(ctx)
	if err != nil {
		return fmt.Errorf("cannot load movies: %w", err)
	}
	if err := index.Rebuild(ctx, movies); err != nil {
		return err
	}
	if cfg.CatalogFile != "" {
		go reloadCatalogOnHangup(ctx, cfg.CatalogFile, repo, index, logger)
	}

	m := metrics.New()
	a := api.New(&api.Options{
		Repo: repo,
		Catalog: catalog.New(&catalog.Options{
			Store:   repo,
			Index:   index,
			Logger:  logger,
			Metrics: m,
		}),
		Posters: poster.New(poster.Options{
			Dir:      cfg.Posters.Dir,
			CacheDir: cfg.Posters.CacheDir,
			Quality:  cfg.Posters.Quality,
			Logger:   logger,
		}),
		Metrics:      m,
		Logger:       logger,
		AutoRegister: cfg.AutoRegister,
		CORSOrigins:  cfg.Listen.CORSOrigins,
	})
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Listen.Address, strconv.Itoa(cfg.Listen.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	useTLS := cfg.Listen.TLSCert != "" && cfg.Listen.TLSKey != ""
	if useTLS {
		kpr, err := newKeypairReloader(ctx, cfg.Listen.TLSCert, cfg.Listen.TLSKey, logger)
		if err != nil {
			return fmt.Errorf("error loading keypair: %w", err)
		}
		srv.TLSConfig = &tls.Config{
			MinVersion:     tls.VersionTLS13,
			GetCertificate: kpr.GetCertificateFunc(),
		}
	}

	errc := make(chan error, 1)
	go func() {
		if useTLS {
			log.Info().Str("addr", srv.Addr).Msg("serving HTTPS")
			errc <- srv.ListenAndServeTLS("", "")
			return
		}
		log.Info().Str("addr", srv.Addr).Msg("serving HTTP")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// importCatalog loads the catalog file and stores its movies.
func importCatalog(ctx context.Context, path string, repo database.Repository, index catalogfile.Indexer, logger zerolog.Logger) error {
	f, err := catalogfile.Load(path)
	if err != nil {
		return err
	}
	if _, err := catalogfile.Import(ctx, repo, index, f, logger); err != nil {
		return fmt.Errorf("cannot import catalog: %w", err)
	}
	return nil
}

// reloadCatalogOnHangup imports the catalog file again on every SIGHUP and
// updates the running search index with the stored movies.
func reloadCatalogOnHangup(ctx context.Context, path string, repo database.Repository, index *search.Search, logger zerolog.Logger) {
	log := logger.With().Str("component", "server").Logger()
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			log.Info().Str("file", path).Msg("reloading catalog")
			if err := importCatalog(ctx, path, repo, index, logger); err != nil {
				log.Error().Err(err).Msg("catalog reload failed")
			}
		}
	}
}
