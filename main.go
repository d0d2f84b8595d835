package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"skirmish/internal/config"
	"skirmish/internal/lobby"
	"skirmish/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger := log.Default()
	registry := lobby.NewRegistry(lobby.Config{
		TickInterval:     cfg.TickInterval,
		EventBuffer:      cfg.EventBuffer,
		SubscriberBuffer: cfg.SubscriberBuffer,
		PublicURL:        cfg.PublicURL,
		Logger:           logger,
	})
	srv := server.NewServer(registry, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting skirmish lobby server...")
	if err := srv.Start(ctx, cfg.Addr); err != nil {
		log.Fatal("Server failed: ", err)
	}
	log.Println("Server stopped")
}
