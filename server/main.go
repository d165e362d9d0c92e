package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := LoadConfig(".env", os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *DB
	var analytics *Analytics
	var events EventSink
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()
		analytics = NewAnalytics(db)
		defer analytics.Stop()
		events = analytics
	}

	auth, err := NewAuth(db, cfg.OperatorPassword)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	sectors := NewSectorManager(ctx, events)
	defer sectors.StopAll()

	if cfg.ScenarioPath != "" {
		sc, err := LoadScenario(cfg.ScenarioPath)
		if err != nil {
			log.Fatalf("scenario: %v", err)
		}
		for _, spec := range sc.Sectors {
			sec, err := sectors.CreateSector(spec.Name, spec.Seed)
			if err != nil {
				log.Fatalf("scenario: %v", err)
			}
			n, err := spec.Apply(sec)
			if err != nil {
				log.Fatalf("scenario %s: %v", spec.Name, err)
			}
			log.Printf("sector %s (%s): spawned %d objects", sec.ID, sec.Name, n)
			sectors.Start(sec)
		}
	} else {
		sec, err := sectors.CreateSector("Default", time.Now().UnixNano())
		if err != nil {
			log.Fatalf("create sector: %v", err)
		}
		sectors.Start(sec)
	}

	hub := NewHub(sectors, auth, analytics)
	go hub.Run(ctx.Done())

	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(hub, cfg.AllowedOrigins, cfg.PublicURL)}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
