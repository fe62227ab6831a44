package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/camden-git/photometabackend/config"
	"github.com/camden-git/photometabackend/database"
	"github.com/camden-git/photometabackend/handlers"
	"github.com/camden-git/photometabackend/iptc"
	"github.com/camden-git/photometabackend/media"
	"github.com/camden-git/photometabackend/realtime"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/services"
	"github.com/camden-git/photometabackend/workers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dbDir := filepath.Dir(cfg.DatabasePath); dbDir != "." {
		log.Printf("Ensuring database directory exists: %s", dbDir)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
		}
	}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("FATAL: Failed to run database migrations: %v", err)
	}

	tagRepo := repository.NewTagRepository(db)
	imageRepo := repository.NewImageRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	dict := iptc.DefaultDictionary()
	cache := media.NewCache(cfg.ThumbnailDirName, cfg.PreviewDirName, cfg.ThumbnailSize, cfg.PreviewMaxEdge)
	// scans must never descend into the folders the cache writes into
	scanService := services.NewScanService(dict, imageRepo, directoryRepo, cache.ThumbnailDirName(), cache.PreviewDirName())
	metadataService := services.NewMetadataService(dict, imageRepo)

	hub := realtime.NewHub()
	go hub.Run()

	log.Printf("Initializing scan worker pool (Workers: %d, Queue Size: %d)...", cfg.NumScanWorkers, cfg.ScanQueueSize)
	scanPool := workers.NewScanWorkerPool(scanService, hub, cfg.NumScanWorkers, cfg.ScanQueueSize)

	log.Printf("Browsing photos under root: %s", cfg.BrowseRoot)
	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Thumbnail size (longest side): %dpx", cfg.ThumbnailSize)
	log.Printf("Preview size (longest side): %dpx", cfg.PreviewMaxEdge)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	directoryHandler := &handlers.DirectoryHandler{Cfg: cfg, Scanner: scanService, Pool: scanPool, DirectoryRepo: directoryRepo}
	imageHandler := &handlers.ImageHandler{Cfg: cfg, Cache: cache, Scanner: scanService, ImageRepo: imageRepo}
	metadataHandler := &handlers.MetadataHandler{Cfg: cfg, Meta: metadataService, Hub: hub}
	tagHandler := &handlers.TagHandler{TagRepo: tagRepo}
	preferenceHandler := &handlers.PreferenceHandler{PreferenceRepo: preferenceRepo}

	// websocket connections outlive any request timeout, so the
	// timeout middleware only wraps the REST routes
	r.Get("/ws", hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/health", handlers.Health)
		r.Route("/directories", func(r chi.Router) {
			r.Get("/browse", directoryHandler.Browse)
			r.Post("/open", directoryHandler.Open)
			r.Get("/scanned", directoryHandler.ListScanned)
			r.Route("/scan", func(r chi.Router) {
				r.Post("/", directoryHandler.StartScan)
				r.Delete("/", directoryHandler.CancelScan)
				r.Get("/status", directoryHandler.ScanStatus)
			})
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/", imageHandler.List)
			r.Get("/thumbnail", imageHandler.Thumbnail)
			r.Get("/preview", imageHandler.Preview)
			r.Post("/open-in-viewer", imageHandler.OpenInViewer)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Get("/", metadataHandler.Get)
			r.Put("/", metadataHandler.Update)
			r.Get("/definitions", metadataHandler.Definitions)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tagHandler.List)
			r.Get("/search", tagHandler.Search)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", preferenceHandler.List)
			r.Get("/{key}", preferenceHandler.Get)
			r.Put("/{key}", preferenceHandler.Set)
		})
	})

	serverAddr := cfg.Host + ":" + cfg.Port
	fmt.Printf("Server starting on http://%s\n", serverAddr)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
