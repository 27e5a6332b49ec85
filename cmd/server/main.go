package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/config"
	"github.com/lb-conn/xml-signer/setup"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	addr := flag.String("addr", "", "listen address, overrides config and environment")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *addr != "" {
		cfg.HTTP.ListenAddress = *addr
	}

	setup.Logger(cfg.Logger)

	s := setup.NewServer(cfg)

	go func() {
		if err := s.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to gracefully shut down server")
	}
	log.Info().Msg("Server stopped")
}
