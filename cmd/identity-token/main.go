// Package main issues development identity tokens for the donations service.
package main

import (
	"flag"
	"os"

	"github.com/louisbranch/foodshare/internal/platform/config"
	"github.com/louisbranch/foodshare/internal/tools/identitytoken"
)

func main() {
	cfg, err := identitytoken.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := identitytoken.Run(cfg, os.Stdout, nil, nil); err != nil {
		config.Exitf("identity token: %v", err)
	}
}
