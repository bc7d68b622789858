package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cboy-pos/api/internal/broker"
	"github.com/cboy-pos/api/internal/catalog"
	"github.com/cboy-pos/api/internal/config"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/router"
	"github.com/cboy-pos/api/internal/service"
	"github.com/cboy-pos/api/internal/snapshot"
	"github.com/cboy-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.LayoutPath)
	if err != nil {
		log.Fatalf("Unable to load layout: %v", err)
	}
	initial, err := cat.InitialState()
	if err != nil {
		log.Fatalf("Unable to build roster: %v", err)
	}

	store, err := snapshot.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath, cfg.SnapshotKey)
	if err != nil {
		log.Fatalf("Unable to open snapshot store: %v", err)
	}
	defer store.Close()

	hub := ws.NewHub()
	sinks := []service.Sink{hub}
	if cfg.AMQPURL != "" {
		p, err := broker.DialAMQP(cfg.AMQPURL, broker.DefaultExchange)
		if err != nil {
			log.Fatalf("Unable to connect to AMQP: %v", err)
		}
		defer p.Close()
		sinks = append(sinks, p)
	}
	if cfg.NATSURL != "" {
		p, err := broker.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Unable to connect to NATS: %v", err)
		}
		defer p.Close()
		sinks = append(sinks, p)
	}

	cutoff := time.Duration(cfg.CutoffHour)*time.Hour + time.Duration(cfg.CutoffMinute)*time.Minute
	eng := pos.NewEngine(pos.Config{
		TaxRate:   cfg.TaxRate,
		Cutoff:    &cutoff,
		Location:  cfg.Location,
		LateAfter: cfg.LateOrderAfter,
	})
	coord := service.New(eng, initial, store, service.Options{}, sinks...)
	coord.Restore(ctx)

	runCtx, cancelRun := context.WithCancel(context.Background())
	coordDone := make(chan struct{})
	go func() {
		coord.Run(runCtx)
		close(coordDone)
	}()
	go hub.Run(runCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, coord, cat, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: http shutdown: %v", err)
	}

	// Stopping the coordinator flushes the last snapshot.
	cancelRun()
	<-coordDone
}
