// Package main provides the aprsingest gateway: an APRS-IS ingestion
// pipeline paired with a read API and real-time subscription hub.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/chrissnell/aprsingest/internal/api"
	"github.com/chrissnell/aprsingest/internal/app"
	"github.com/chrissnell/aprsingest/internal/constants"
	"github.com/chrissnell/aprsingest/internal/fanout"
	"github.com/chrissnell/aprsingest/internal/ingest"
	"github.com/chrissnell/aprsingest/internal/log"
	"github.com/chrissnell/aprsingest/internal/store"
	"github.com/chrissnell/aprsingest/internal/stream"
	"github.com/chrissnell/aprsingest/pkg/aprs"
	"github.com/chrissnell/aprsingest/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	showPasscode := flag.String("show-passcode", "", "Print the APRS-IS passcode for a callsign and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aprsingest %s (%s/%s)\n", constants.Version, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	if *showPasscode != "" {
		fmt.Println(aprs.CalculatePasscode(*showPasscode))
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}
	if cfg.IsDefaultCallsign() {
		log.Warn("Aprs.Callsign is left at the default N0CALL; logging in receive-only")
	}

	if err := run(cfg); err != nil {
		log.Errorf("gateway error: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	sugared := log.GetSugaredLogger()

	db, err := store.NewPostgres(cfg.ConnectionStrings.Database, sugared)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate store schema: %w", err)
	}

	dedup := buildDedupCache(cfg.ConnectionStrings.Cache)

	registry := fanout.NewRegistry(sugared)

	password := resolvePassword(cfg.Aprs.Password, cfg.Aprs.Callsign)
	loginLine := stream.LoginLine(cfg.Aprs.Callsign, password, "aprsingest", constants.Version, cfg.Aprs.Filter)
	client := stream.New(cfg.Aprs.Server, loginLine, sugared)

	pipeline := ingest.NewWithCapacity(client, db, registry, dedup, sugared, cfg.Ingest.Workers, cfg.Ingest.QueueCapacity)

	apiServer := api.New(cfg.API.ListenAddr, db, db, dedup, client, registry, sugared)

	gateway := app.New(sugared)
	gateway.Add("ingest-pipeline", app.PipelineRunnable{RunFunc: pipeline.Run})
	gateway.Add("read-api", apiServer)

	return gateway.Run(context.Background())
}

// buildDedupCache selects the memcache-backed dedup cache when a cache
// connection string is configured, falling back to the in-process TTL
// map for single-node deployments with no external cache.
func buildDedupCache(connectionString string) ingest.DedupCache {
	if connectionString == "" {
		return ingest.NewTTLMapDedupCache()
	}
	return ingest.NewMemcacheDedupCache(connectionString)
}

// resolvePassword returns the configured APRS-IS login passcode. A
// literal numeric password is used as-is (including the receive-only
// default "-1"); the literal "auto" computes the real passcode for
// callsign, mirroring the teacher's controller fallback.
func resolvePassword(password, callsign string) string {
	if password == "auto" {
		return strconv.Itoa(aprs.CalculatePasscode(callsign))
	}
	return password
}
