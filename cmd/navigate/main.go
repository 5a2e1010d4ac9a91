// Package main follows links against a running content server and prints
// the settled document state as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	navigatecmd "github.com/louisbranch/pagesync/internal/cmd/navigate"
	entrypoint "github.com/louisbranch/pagesync/internal/platform/cmd"
	"github.com/louisbranch/pagesync/internal/platform/config"
)

func main() {
	cfg, err := navigatecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, navigatecmd.ErrUsage) {
			config.ExitCodef(config.ExitUsage, "navigate: %v", err)
		}
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceNavigate))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := navigatecmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("navigate: %v", err)
	}
}
