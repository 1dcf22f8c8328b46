// Package cmd - serve command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"distconv/api"
	"distconv/core/input"
	"distconv/internal/config"
	"distconv/internal/logging"
	"distconv/internal/ratelimit"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion API over HTTP",
	Long: `Serve the JSON conversion API.

Endpoints:
  POST /convert   {"value": 1, "from": "inches", "to": "millimeters"}
  POST /batch     HCL batch document as body
  GET  /units     ?system=imperial|metric
  GET  /systems
  GET  /health
  GET  /version
  GET  /stats`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address; default from config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	policy, err := input.ParsePolicy(string(cfg.Input.OnInvalid))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := api.Options{
		Version:            version,
		Policy:             policy,
		TrustXForwardedFor: cfg.Server.RateLimit.TrustXForwardedFor,
	}

	if rl := cfg.Server.RateLimit; rl.Enabled {
		store := ratelimit.NewStore(rl.RPS, rl.Burst)
		store.StartJanitor(ctx)
		opts.Limiter = store
	}

	switch cfg.Server.Stats.Backend {
	case "memory":
		opts.Stats = ratelimit.NewMemoryStats()
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Server.Stats.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Server.Stats.RedisAddr, err)
		}
		var statsOpts []ratelimit.RedisStatsOption
		if cfg.Server.Stats.Prefix != "" {
			statsOpts = append(statsOpts, ratelimit.WithPrefix(cfg.Server.Stats.Prefix))
		}
		opts.Stats = ratelimit.NewRedisStats(rdb, statsOpts...)
	}

	server := api.NewServer(opts)

	w := newWriter(cmd)
	w.Success("distconv API v%s listening on %s", version, addr)
	if opts.Limiter != nil {
		w.Info("rate limit: %g requests/s per client, burst %d", opts.Limiter.RPS(), opts.Limiter.Burst())
	} else {
		w.Warning("rate limiting is disabled")
	}
	w.Debug("stats backend: %s", cfg.Server.Stats.Backend)
	logging.Info("server starting", zap.String("addr", addr))

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if err := server.ListenAndServe(ctx, addr, timeout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logging.Info("server stopped")
	return nil
}
