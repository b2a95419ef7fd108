// Package donations parses donations service flags and launches the service.
package donations

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/foodshare/internal/platform/cmd"
	"github.com/louisbranch/foodshare/internal/platform/discovery"
	server "github.com/louisbranch/foodshare/internal/services/donations/app"
)

// Config holds donations command configuration.
type Config struct {
	Port int `env:"FOODSHARE_DONATIONS_PORT" envDefault:"8095"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The donations gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 {
		cfg.Port = discovery.GRPCPort(discovery.ServiceDonations)
	}
	return cfg, nil
}

// Run starts the donations gRPC API service and notification dispatcher.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDonations, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
