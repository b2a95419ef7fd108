// Package server wires the donations runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	donationsv1 "github.com/louisbranch/foodshare/api/donations/v1"
	"github.com/louisbranch/foodshare/internal/platform/config"
	"github.com/louisbranch/foodshare/internal/platform/timeouts"
	donationsservice "github.com/louisbranch/foodshare/internal/services/donations/api/grpc/donations"
	"github.com/louisbranch/foodshare/internal/services/donations/bus"
	"github.com/louisbranch/foodshare/internal/services/donations/channel/telegram"
	"github.com/louisbranch/foodshare/internal/services/donations/classify"
	"github.com/louisbranch/foodshare/internal/services/donations/geocode"
	"github.com/louisbranch/foodshare/internal/services/donations/identity"
	"github.com/louisbranch/foodshare/internal/services/donations/lifecycle"
	"github.com/louisbranch/foodshare/internal/services/donations/notify"
	donationssqlite "github.com/louisbranch/foodshare/internal/services/donations/storage/sqlite"
	"github.com/louisbranch/foodshare/internal/services/shared/grpcauthctx"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath           string        `env:"FOODSHARE_DONATIONS_DB_PATH"`
	ReadTimeout      time.Duration `env:"FOODSHARE_DONATIONS_READ_TIMEOUT" envDefault:"2s"`
	FeedPollInterval time.Duration `env:"FOODSHARE_DONATIONS_FEED_POLL_INTERVAL" envDefault:"500ms"`
	Geocoder         geocode.Config
	Telegram         telegram.Config
}

func loadServerEnv() (serverEnv, error) {
	var cfg serverEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return serverEnv{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "donations.db")
	}
	return cfg, nil
}

// Server hosts the donations gRPC API, the notification dispatcher, and the
// storage lifecycle.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *donationssqlite.Store
	dispatcher *notify.Dispatcher
}

// New creates a configured donations server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured donations server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	srvEnv, err := loadServerEnv()
	if err != nil {
		return nil, err
	}
	identityCfg, err := identity.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load identity config: %w", err)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	store, err := openDonationsStore(srvEnv.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	metrics, err := lifecycle.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("register lifecycle metrics: %w", err)
	}
	changes := bus.New(store, bus.WithPollInterval(srvEnv.FeedPollInterval))
	coordinator := lifecycle.New(store, store,
		lifecycle.WithGeocoder(newGeocoder(srvEnv.Geocoder)),
		lifecycle.WithNotifier(changes),
		lifecycle.WithReadTimeout(srvEnv.ReadTimeout),
		lifecycle.WithMetrics(metrics),
	)
	dispatcher := notify.NewDispatcher(changes, store, store, store, newChannels(srvEnv.Telegram), notify.Config{})
	apiService := donationsservice.NewService(coordinator, changes, notify.NewInbox(store, nil), classify.NewKeywords())

	authenticator := identity.NewProvider(identityCfg, nil)
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(grpcauthctx.UnaryServerInterceptor(authenticator)),
		grpc.ChainStreamInterceptor(grpcauthctx.StreamServerInterceptor(authenticator)),
	)
	healthServer := health.NewServer()
	donationsv1.RegisterDonationServiceServer(grpcServer, apiService)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(donationsv1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		dispatcher: dispatcher,
	}, nil
}

func newGeocoder(cfg geocode.Config) lifecycle.Geocoder {
	if strings.TrimSpace(cfg.URL) == "" {
		return geocode.Nop{}
	}
	return geocode.New(cfg.URL, nil)
}

func newChannels(cfg telegram.Config) []notify.Channel {
	channel, err := telegram.New(cfg)
	if err != nil {
		if !errors.Is(err, telegram.ErrDisabled) {
			log.Printf("telegram channel unavailable, continuing with in-app notifications only: %v", err)
		}
		return nil
	}
	return []notify.Channel{channel}
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a donations server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the gRPC server and the notification dispatcher until context
// cancellation or the first failure.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("donations server listening at %v", s.listener.Addr())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.dispatcher.Run(gctx); err != nil {
			return fmt.Errorf("run notification dispatcher: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.stop()
		return nil
	})
	return g.Wait()
}

// stop drains in-flight calls, then cuts open subscription streams.
func (s *Server) stop() {
	if s.health != nil {
		s.health.Shutdown()
	}
	drained := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(timeouts.Shutdown):
		s.grpcServer.Stop()
		<-drained
	}
}

// Close releases donations server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close donations store: %v", err)
		}
	}
}

func openDonationsStore(path string) (*donationssqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := donationssqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open donations sqlite store: %w", err)
	}
	return store, nil
}
