package main

import (
	// Go Internal Packages
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Local Packages
	config "tx-tracker/config"
	models "tx-tracker/models"
	api "tx-tracker/repositories/api"
	server "tx-tracker/server"
	trackersvc "tx-tracker/services/tracker"
	stream "tx-tracker/stream"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// LoadSecrets Loads the secret variables and overrides the config
func LoadSecrets(k config.Config) config.Config {
	APIBaseURL := os.Getenv("API_BASE_URL")
	if APIBaseURL != "" {
		k.API.BaseURL = APIBaseURL
	}

	WSEndpoint := os.Getenv("WS_ENDPOINT")
	if WSEndpoint != "" {
		k.Websocket.Endpoint = WSEndpoint
	}

	IsProdMode := os.Getenv("IS_PROD_MODE")
	if IsProdMode != "" {
		k.IsProdMode = IsProdMode == "true"
	}
	return k
}

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Update and Validate config before starting the tracker
	updatedKonf := LoadSecrets(appKonf)
	if err = updatedKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !updatedKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = updatedKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	streamMetrics := stream.NewMetrics("tt", registry)
	trackerMetrics := trackersvc.NewMetrics("tt", registry)

	apiClient := api.NewClient(
		updatedKonf.API.BaseURL,
		time.Duration(updatedKonf.API.TimeoutSeconds)*time.Second,
		logger,
	)

	manager := stream.NewManager(stream.ManagerConfig{
		Endpoint:    updatedKonf.Websocket.Endpoint,
		BaseDelay:   time.Duration(updatedKonf.Websocket.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(updatedKonf.Websocket.MaxDelayMs) * time.Millisecond,
		MaxAttempts: updatedKonf.Websocket.MaxAttempts,
		ChannelSize: updatedKonf.Websocket.ChannelSize,
	}, logger, streamMetrics)

	tracker := trackersvc.New(logger, manager, apiClient, trackerMetrics)

	manager.Start(ctx)
	go tracker.Run(ctx)

	// Initial page load; live updates keep the set fresh if this fails
	if err = tracker.Fetch(ctx, defaultQuery(updatedKonf)); err != nil {
		logger.Warn("initial fetch failed", zap.Error(err))
	}

	srv := server.New(
		logger, tracker, registry,
		updatedKonf.API.PageSize,
		time.Duration(updatedKonf.Server.HighlightWindowMs)*time.Millisecond,
	)

	logger.Info("starting dashboard server", zap.String("addr", updatedKonf.Server.ListenAddr))
	if err = srv.Run(ctx, updatedKonf.Server.ListenAddr); err != nil {
		logger.Fatal("dashboard server failed", zap.Error(err))
	}
}

func defaultQuery(conf config.Config) models.TransactionQuery {
	return models.TransactionQuery{Page: 1, Limit: conf.API.PageSize}
}
