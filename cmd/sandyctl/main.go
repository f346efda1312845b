// Command sandyctl runs maintenance tasks against the Sandy database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"sandy/internal/config"
	"sandy/internal/database/migration"
	dbpostgres "sandy/internal/database/postgres"
	"sandy/internal/logging"
	"sandy/internal/pkg/jwt"
	"sandy/internal/service"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const usage = `usage: sandyctl <command> [flags]

commands:
  init-db     create the schema if it is missing
  migrate     apply pending versioned migrations
  cleanup     delete data past its retention window
  analytics   print system analytics, or one user's with -user
  health      check database connectivity
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Duration("timeout", 2*time.Minute, "overall deadline")
	userFlag := ""
	if cmd == "analytics" {
		fs.StringVar(&userFlag, "user", "", "user id for per-user analytics")
	}
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	switch cmd {
	case "init-db", "migrate", "cleanup", "analytics", "health":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("connect postgres")
		return 1
	}
	defer pool.Close()

	jwtSvc := jwt.NewHMACService(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret(), cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	svc := service.NewPostgresService(pool, jwtSvc, service.OptionsFromConfig(cfg), logger)

	out, err := dispatch(ctx, cmd, userFlag, pool, svc, logger)
	if err != nil {
		logger.Error().Err(err).Str("command", cmd).Msg("command failed")
		return 1
	}
	if err := writeJSON(stdout, out); err != nil {
		logger.Error().Err(err).Msg("write output")
		return 1
	}
	if h, ok := out.(service.Health); ok && !h.Healthy() {
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, cmd, userFlag string, pool *dbpostgres.Pool, svc *service.PostgresService, logger zerolog.Logger) (any, error) {
	switch cmd {
	case "init-db":
		if err := svc.Initialize(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"status": "initialized"}, nil
	case "migrate":
		n, err := migration.Runner{Logger: logger}.Run(ctx, pool.SQLDB())
		if err != nil {
			return nil, err
		}
		return map[string]int{"applied": n}, nil
	case "cleanup":
		res, err := svc.CleanupOldData(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": res, "total": res.Total()}, nil
	case "analytics":
		if userFlag == "" {
			return svc.GetSystemAnalytics(ctx)
		}
		id, err := uuid.Parse(userFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid -user: %w", err)
		}
		return svc.GetUserAnalytics(ctx, id)
	case "health":
		return svc.HealthCheck(ctx), nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
