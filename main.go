package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/highway.planner/internal/api"
	"github.com/banshee-data/highway.planner/internal/config"
	"github.com/banshee-data/highway.planner/internal/db"
	"github.com/banshee-data/highway.planner/internal/planner"
	"github.com/banshee-data/highway.planner/internal/track"
	"github.com/banshee-data/highway.planner/internal/version"
)

var (
	listen        = flag.String("listen", ":4567", "Listen address (the simulator connects here)")
	mapFile       = flag.String("map", "data/highway_map.csv", "Road centreline waypoint file")
	configFile    = flag.String("config", "", "Tuning config JSON (defaults used when empty)")
	dbFile        = flag.String("db", "planner_data.db", "Cycle recording database (empty disables recording)")
	migrationsDir = flag.String("migrations", "internal/db/migrations", "Schema migrations directory")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("highway.planner %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	// The planner cannot run without the road geometry.
	roadMap, err := track.Load(*mapFile, cfg.GetMapMaxSMeters())
	if err != nil {
		log.Fatalf("failed to load waypoint map: %v", err)
	}
	log.Printf("loaded %d waypoints from %s (loop length %.1fm)", roadMap.Len(), *mapFile, roadMap.MaxS())

	var opts []planner.Option
	var database *db.DB
	if *dbFile != "" {
		database, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer database.Close()
		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		run, err := database.StartRun(version.Version, *mapFile)
		if err != nil {
			log.Fatalf("failed to register run: %v", err)
		}
		log.Printf("recording cycles to %s (run %s)", *dbFile, run.ID)
		opts = append(opts, planner.WithRecorder(run))
	}

	pl := planner.New(roadMap, cfg, opts...)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine: the simulator websocket on "/" and the
	// observability API under /api/.
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		mux.HandleFunc("/", NewServer(pl).simulatorHandler)
		apiMux := api.NewServer(pl, cfg, database).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
