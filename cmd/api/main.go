package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sadco.org/internal/audit"
	"sadco.org/internal/auth"
	"sadco.org/internal/config"
	"sadco.org/internal/httpapi"
	"sadco.org/internal/obs"
	"sadco.org/internal/store/pg"
)

var (
	version = "1.2.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Observability first: metrics registration, build info
	obs.Init()
	obs.InitBuildInfo(version, commit)

	store, err := pg.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	var introspector auth.Introspector
	if cfg.HydraAdminURL != "" {
		introspector = auth.NewHydraIntrospector(cfg.HydraAdminURL)
	} else {
		introspector, err = auth.NewLocalIntrospector(cfg.LocalTokenSecret)
		if err != nil {
			log.Fatalf("local introspector: %v", err)
		}
		log.Println("WARNING: using local token introspection; not for production")
	}
	authorizer := auth.NewAuthorizer(introspector, store)

	api := httpapi.New(store, authorizer, audit.NewRecorder(store.DB()),
		httpapi.ReadyProbe{DB: store.DB()}, version)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second, // downloads can be large
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting sadco-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = store.Close()
	log.Println("Stopped")
}
