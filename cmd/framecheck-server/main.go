package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/framecheck/framecheck"
	"github.com/framecheck/framecheck/internal/config"
	"github.com/framecheck/framecheck/internal/server"
)

func main() {
	var cfgPath, addr string

	flag.StringVar(&cfgPath, "config", "", "config file path (JSON)")
	flag.StringVar(&addr, "addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if err := loaded.Validate(); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	var out io.Writer = os.Stderr
	if cfg.Server.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.Server.LogFile,
			MaxSize:    cfg.Server.LogMaxSizeMB,
			MaxBackups: cfg.Server.LogMaxBackups,
			Compress:   true,
		})
	}
	logger := log.New(out, "framecheck ", log.LstdFlags|log.Lmsgprefix)

	analyzer := framecheck.NewWithConfig(cfg)
	srv := server.New(analyzer, cfg, logger)

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		logger.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("shutdown error: %v", err)
		}
	}
}
