package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenpantry/internal/api"
	"greenpantry/internal/database"
	"greenpantry/internal/live"
	"greenpantry/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

var (
	port        = flag.Int("port", 8080, "API server port")
	metricsPort = flag.Int("metrics-port", 9090, "Metrics server port")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	if err := database.InitDB(config.Database.Dialect, config.Database.DSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	store := database.NewStore(database.GetDB())
	if err := store.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize monitoring
	collector := monitoring.NewCollector()
	monitor := monitoring.NewMonitor()

	// Initialize API server and live feed
	pantryAPI := api.NewPantryAPI(store, collector, monitor, config.JWTSecret)
	feed := live.NewFeed(store)
	pantryAPI.Router.GET("/ws", feed.HandleWebSocket)

	// Start metrics server
	if config.Metrics.Enabled {
		go startMetricsServer(*metricsPort, config.Metrics.Path, collector)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: pantryAPI.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", *port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func loadConfig(path string) (*Config, error) {
	config := &Config{}
	config.Database.Dialect = "sqlite3"
	config.Database.DSN = "greenpantry.db"
	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults are enough for local development
			return config, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

func startMetricsServer(port int, path string, collector *monitoring.Collector) {
	metricsRouter := gin.Default()
	metricsRouter.GET(path, gin.WrapH(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}

// Config represents the application configuration
type Config struct {
	JWTSecret string `yaml:"jwt_secret"`
	LogLevel  string `yaml:"log_level"`
	Database  struct {
		Dialect string `yaml:"dialect"`
		DSN     string `yaml:"dsn"`
	} `yaml:"database"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}
