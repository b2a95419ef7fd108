// Package timeouts defines shared timeout constants used across foodshare
// processes.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// LedgerRead bounds the read-then-decide phase of a lifecycle transition.
const LedgerRead = 2 * time.Second

// ExternalDelivery caps one hand-off attempt to an external notification channel.
const ExternalDelivery = 5 * time.Second

// Geocode caps one address lookup.
const Geocode = 3 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
