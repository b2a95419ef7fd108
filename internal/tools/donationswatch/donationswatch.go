// Package donationswatch follows the donation change feed from a terminal.
package donationswatch

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	donationsv1 "github.com/louisbranch/foodshare/api/donations/v1"
	entrypoint "github.com/louisbranch/foodshare/internal/platform/cmd"
	"github.com/louisbranch/foodshare/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/foodshare/internal/platform/grpc"
	"github.com/louisbranch/foodshare/internal/platform/timeouts"
	"github.com/louisbranch/foodshare/internal/services/shared/grpcauthctx"
	gogrpc "google.golang.org/grpc"
)

// Config holds donations-watch command configuration.
type Config struct {
	Addr        string        `env:"FOODSHARE_DONATIONS_ADDR"`
	Token       string        `env:"FOODSHARE_IDENTITY_TOKEN"`
	Locale      string        `env:"FOODSHARE_LOCALE"`
	Filter      string        `env:"FOODSHARE_DONATIONS_WATCH_FILTER"`
	DialTimeout time.Duration `env:"FOODSHARE_DONATIONS_DIAL_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "donations gRPC address (default donations:8095)")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "identity token (see identity-token)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for error messages")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "list filter applied to the initial snapshot")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "time to wait for the service to report healthy")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run dials the donations service and prints the snapshot and every change
// until ctx is done.
func Run(ctx context.Context, cfg Config, out io.Writer, dialer platformgrpc.Dialer) error {
	if out == nil {
		return errors.New("output is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("token is required")
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = timeouts.GRPCDial
	}
	addr := discovery.OrDefaultGRPCAddr(cfg.Addr, discovery.ServiceDonations)
	conn, err := platformgrpc.DialWithHealth(ctx, dialer, addr, dialTimeout, nil,
		platformgrpc.DefaultClientDialOptions(
			gogrpc.WithChainUnaryInterceptor(grpcauthctx.BearerUnaryClientInterceptor(cfg.Token)),
			gogrpc.WithChainStreamInterceptor(grpcauthctx.BearerStreamClientInterceptor(cfg.Token)),
		)...,
	)
	if err != nil {
		return fmt.Errorf("dial donations at %s: %w", addr, err)
	}
	defer conn.Close()

	if locale := strings.TrimSpace(cfg.Locale); locale != "" {
		ctx = grpcauthctx.WithLocale(ctx, locale)
	}
	replica := donationsv1.NewReplica()
	return donationsv1.Watch(ctx, donationsv1.NewDonationServiceClient(conn), donationsv1.WatchOptions{
		Filter: cfg.Filter,
		OnReset: func(donations []*donationsv1.Donation) {
			replica.Reset(donations)
			fmt.Fprintf(out, "snapshot: %d donations\n", len(donations))
			for _, d := range replica.Snapshot() {
				fmt.Fprintln(out, formatDonation(d))
			}
		},
		OnEvent: func(event *donationsv1.DonationEvent) {
			if !replica.Apply(event) {
				return
			}
			fmt.Fprintf(out, "#%d %s %s\n", event.GetSeq(), event.GetKind(), formatDonation(event.GetDonation()))
		},
		OnDisconnect: func(err error) {
			fmt.Fprintf(out, "disconnected: %v\n", err)
		},
	})
}

func formatDonation(d *donationsv1.Donation) string {
	if d == nil {
		return ""
	}
	line := fmt.Sprintf("%s [%s] %s %s at %s", d.GetId(), d.GetStatus(), d.Quantity, d.FoodCategory, d.PickupAddress)
	if d.GetShelterId() != "" {
		line += " shelter=" + d.GetShelterId()
	}
	return line
}
