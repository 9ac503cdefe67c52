package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/cloudcreds/storage-oauth-broker/internal/broker"
	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/cloudcreds/storage-oauth-broker/internal/config"
	"github.com/cloudcreds/storage-oauth-broker/internal/cryptostore"
	"github.com/cloudcreds/storage-oauth-broker/internal/httpclient"
	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
	"github.com/cloudcreds/storage-oauth-broker/server"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
)

// janitorInterval is how often the broker's TTL caches are swept for
// expired entries. Correctness never depends on this running; it only
// bounds memory growth from abandoned request states and fetch tokens.
const janitorInterval = 5 * time.Minute

func main() {
	logger := newLogger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic in run")
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	displayAppname(cfg.DisplayNameOrDefault())

	brokerService, client, err := buildBroker(cfg)
	if err != nil {
		return err
	}
	defer client.Stop()

	stopJanitors := brokerService.StartJanitors(janitorInterval)
	defer stopJanitors()

	rend, err := renderer.NewHTML()
	if err != nil {
		return fmt.Errorf("building renderer: %w", err)
	}

	httpServer := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: server.New(server.Config{
			Env:              cfg.Env,
			AppName:          cfg.DisplayNameOrDefault(),
			PrivacyPolicyURL: cfg.PrivacyPolicyURL,
			WellKnownDir:     cfg.WellKnownDir,
		}, brokerService, rend, logger),
	}

	go listenAndServe(logger, httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

// buildBroker assembles the catalog, the optional credential store, the
// shared HTTP client, and the broker.Service from process configuration.
func buildBroker(cfg *config.Config) (*broker.Service, *httpclient.Client, error) {
	secrets, err := config.LoadSecrets(cfg.Secrets, cfg.SecretsPassphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("loading secrets: %w", err)
	}

	cat, err := catalog.Load(cfg.ConfigFile, cfg.Hostname, secrets)
	if err != nil {
		return nil, nil, fmt.Errorf("loading service catalog: %w", err)
	}
	cat = filterCatalog(cat, cfg.ServiceFilter())

	var store *cryptostore.Store
	if dir, ok, err := cfg.StorageDir(); err != nil {
		return nil, nil, fmt.Errorf("resolving storage dir: %w", err)
	} else if ok {
		store, err = cryptostore.New(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening credential store: %w", err)
		}
	}

	client := httpclient.New()
	return broker.New(cat, store, client, cfg.DisplayNameOrDefault()), client, nil
}

// filterCatalog restricts cat to the SERVICES allow-list, or returns it
// unchanged when no filter is configured.
func filterCatalog(cat *catalog.Catalog, allow map[string]struct{}) *catalog.Catalog {
	if allow == nil {
		return cat
	}
	filtered := make(map[string]catalog.ServiceConfig)
	for _, svc := range cat.All() {
		if _, ok := allow[svc.ID]; ok {
			filtered[svc.ID] = svc
		}
	}
	return catalog.New(filtered)
}

func listenAndServe(logger zerolog.Logger, httpServer *http.Server) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("listen and serve")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
