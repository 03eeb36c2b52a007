package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/api"
	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/internal/engine"
)

const (
	maxRequestSize  = 8 << 20
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		port       = flag.String("port", "8080", "Port to run the server on")
		dataDir    = flag.String("data-dir", "", "Directory for sentence snapshots and the SQLite database (overrides the settings file)")
		configPath = flag.String("config", "", "JSON settings file")
		origins    = flag.String("cors-origin", "*", "Origin allowed to call the API from a browser")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("NatEx - regular expressions over annotated sentences\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                            # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000                # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --config natex.json        # Load annotators and limits from a file\n", os.Args[0])
		fmt.Printf("  %s --data-dir /tmp/natex      # Use custom data directory\n", os.Args[0])
		return
	}

	// Handle version flag
	if *version {
		fmt.Printf("NatEx v1.0.0\n")
		fmt.Printf("Lexicon, stanza and spaCy annotators, CoNLL-U import, memory and SQLite stores\n")
		return
	}

	settings := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		settings = loaded
	}
	if *dataDir != "" {
		settings.DataDir = *dataDir
	}

	log.Printf("Using data directory: %s", settings.DataDir)
	natexEngine, err := engine.NewEngine(settings)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.CORSMiddleware(*origins))
	router.Use(api.RequestSizeLimitMiddleware(maxRequestSize))

	// Setup API routes
	api.SetupRoutes(router, natexEngine)

	server := &http.Server{
		Addr:              ":" + *port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s...", *port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Warning: Server shutdown failed: %v", err)
	}
	if err := natexEngine.Close(); err != nil {
		log.Printf("Warning: %v", err)
	}
}
