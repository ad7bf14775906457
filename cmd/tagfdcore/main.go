// Command tagfdcore is the tagfd core daemon: it owns the tag registry,
// binds the client-visible Unix-socket namespace and the administrative
// socket (spec.md §6), and serves the read-only discovery HTTP endpoint
// described in SPEC_FULL.md.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hsnyder/tagfd/internal/config"
	"github.com/hsnyder/tagfd/internal/discovery"
	"github.com/hsnyder/tagfd/internal/logger"
	"github.com/hsnyder/tagfd/internal/tagcore"
	"github.com/hsnyder/tagfd/internal/transport"
)

// Version is the tagfd version string, overridable at build time via
// -ldflags "-X main.Version=x.y.z", the same convention the teacher
// uses for its own binary.
var Version = "0.1.0-dev"

var (
	showVersion bool
	configPath  string
)

func init() {
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&configPath, "config", "", "path to a tagfd.yaml config file (optional)")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("tagfd", Version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("loading configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.TraceSubsystems)

	core := tagcore.NewCore(cfg.Capacity)

	srv := transport.NewServer(core, cfg)
	if err := srv.Start(); err != nil {
		logger.Fatal("starting transport: %v", err)
	}

	disco := discovery.NewService(core.Registry)
	httpServer := &http.Server{Addr: cfg.DiscoveryAddr, Handler: disco}
	go func() {
		logger.Info("discovery: listening on http://%s", cfg.DiscoveryAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("discovery server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal %v, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("discovery server shutdown: %v", err)
	}

	srv.Shutdown()
	logger.Info("tagfd core shutdown complete")
}
