// Command hexspiral converts between spiral indices and cube coordinates.
//
//	hexspiral demo [index]          print one round trip
//	hexspiral serve                 run the HTTP/WebSocket API
//	hexspiral export [-radius N]    write a spiral table to SQLite
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/cache"
	"github.com/gravitas-games/hexspiral/internal/config"
	"github.com/gravitas-games/hexspiral/internal/gamemap"
	"github.com/gravitas-games/hexspiral/internal/persistence"
	"github.com/gravitas-games/hexspiral/internal/server"
	"github.com/gravitas-games/hexspiral/internal/service"
	"github.com/gravitas-games/hexspiral/internal/spiral"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", cfg.Log.Level)); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "demo":
		err = runDemo(os.Stdout, args)
	case "serve":
		err = runServe(cfg)
	case "export":
		err = runExport(os.Stdout, cfg, args)
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: hexspiral demo [index] | serve | export [-radius N] [-db path]")
}

// loadConfig reads CONFIG_PATH when set and otherwise falls back to defaults.
func loadConfig() (*config.Config, error) {
	path := getEnv("CONFIG_PATH", "./configs/server.yaml")
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && os.Getenv("CONFIG_PATH") == "" {
		return config.Default(), nil
	}
	return cfg, err
}

// runDemo prints the cube coordinate of one index and converts it back.
func runDemo(w io.Writer, args []string) error {
	x := uint64(5)
	if len(args) > 0 {
		v, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}
		x = v
	}

	cube := spiral.ToCube(x)
	back, ok := spiral.FromCube(cube)
	if !ok {
		return fmt.Errorf("no spiral index found for %v", cube)
	}
	fmt.Fprintf(w, "You input %d. This is %v in cube coords, or %d converted back to spiral coords\n", x, cube, back)
	return nil
}

func runServe(cfg *config.Config) error {
	log.Info().Str("addr", cfg.Server.Addr()).Msg("starting hexspiral server")

	var (
		rdb   *redis.Client
		store cache.Cache = cache.Nop{}
	)
	if cfg.Cache.Size > 0 {
		store = cache.NewMemory(cfg.Cache.Size)
	}
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info().Str("address", cfg.Redis.Address).Msg("connected to Redis")
		store = cache.NewRedis(rdb, cfg.Redis.KeyPrefix, cfg.Redis.TTL())
	}

	svc := service.New(cfg.Limits.MaxRing, cfg.Limits.MaxBatch,
		service.WithCache(store),
		service.WithLogger(log.With().Str("component", "service").Logger()),
	)
	srv := server.New(cfg, svc, rdb)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.Server.Addr()); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}

	log.Info().Msg("server stopped")
	return nil
}

func runExport(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	radius := fs.Int("radius", 50, "outermost ring to export")
	dbPath := fs.String("db", cfg.Database.Path, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *radius < 0 || uint64(*radius) > cfg.Limits.MaxRing {
		return fmt.Errorf("radius %d outside [0, %d]", *radius, cfg.Limits.MaxRing)
	}

	start := time.Now()
	gm, err := gamemap.New(*radius)
	if err != nil {
		return fmt.Errorf("build map: %w", err)
	}

	db, err := persistence.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveCells(gm.Cells()); err != nil {
		return fmt.Errorf("save cells: %w", err)
	}

	fmt.Fprintf(w, "exported %s cells (%d rings) to %s in %s\n",
		humanize.Comma(int64(gm.HexCount())), *radius+1, *dbPath, time.Since(start).Round(time.Millisecond))
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
