package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultThumbnailDirName = ".thumbnails"
	DefaultPreviewDirName   = ".previews"
)

const (
	defaultThumbnailSize  = 250
	defaultPreviewMaxEdge = 2048
	defaultPageSize       = 25
	defaultScanQueueSize  = 64
	defaultNumScanWorkers = 1
)

type Config struct {
	// server bind address
	Host string
	Port string

	// database path
	DatabasePath string

	// directory browsing is confined to this subtree
	BrowseRoot string

	// cache directories created next to the images they derive from
	ThumbnailDirName string
	PreviewDirName   string

	// derived image settings
	ThumbnailSize  int
	PreviewMaxEdge int

	// listing settings
	DefaultPageSize int

	// scan worker settings
	ScanQueueSize  int
	NumScanWorkers int

	CORSAllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	browseRoot := os.Getenv("BROWSE_ROOT")
	if browseRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			browseRoot = "."
		} else {
			browseRoot = home
		}
	}
	absBrowseRoot, err := filepath.Abs(browseRoot)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for browse root '%s': %w", browseRoot, err)
	}

	origins := strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		Host:               getEnvOrDefault("HOST", "127.0.0.1"),
		Port:               getEnvOrDefault("PORT", "8080"),
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", "photometa.db"),
		BrowseRoot:         absBrowseRoot,
		ThumbnailDirName:   getEnvOrDefault("THUMBNAIL_DIR_NAME", DefaultThumbnailDirName),
		PreviewDirName:     getEnvOrDefault("PREVIEW_DIR_NAME", DefaultPreviewDirName),
		ThumbnailSize:      getEnvIntOrDefault("THUMBNAIL_SIZE", defaultThumbnailSize),
		PreviewMaxEdge:     getEnvIntOrDefault("PREVIEW_MAX_EDGE", defaultPreviewMaxEdge),
		DefaultPageSize:    getEnvIntOrDefault("DEFAULT_PAGE_SIZE", defaultPageSize),
		ScanQueueSize:      getEnvIntOrDefault("SCAN_QUEUE_SIZE", defaultScanQueueSize),
		NumScanWorkers:     getEnvIntOrDefault("NUM_SCAN_WORKERS", defaultNumScanWorkers),
		CORSAllowedOrigins: origins,
	}

	return cfg, nil
}
