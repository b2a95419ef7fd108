// Package main follows the donation change feed from a terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/foodshare/internal/tools/donationswatch"
)

func main() {
	cfg, err := donationswatch.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := donationswatch.Run(ctx, cfg, os.Stdout, nil); err != nil {
		log.Fatalf("watch donations: %v", err)
	}
}
