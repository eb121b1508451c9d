package config

import (
	// Local Packages
	errors "tx-tracker/errors"
)

var DefaultConfig = []byte(`
application: "tx-tracker"

logger:
  level: "debug"

is_prod_mode: false

api:
  base_url: "http://localhost:8000"
  timeout_seconds: 10
  page_size: 10

websocket:
  endpoint: "ws://localhost:8000/ws"
  base_delay_ms: 1000
  max_delay_ms: 30000
  max_attempts: 10
  channel_size: 256

server:
  listen_addr: ":8080"
  highlight_window_ms: 4000
`)

type Config struct {
	Application string    `koanf:"application"`
	Logger      Logger    `koanf:"logger"`
	IsProdMode  bool      `koanf:"is_prod_mode"`
	API         API       `koanf:"api"`
	Websocket   Websocket `koanf:"websocket"`
	Server      Server    `koanf:"server"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type API struct {
	BaseURL        string `koanf:"base_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
	PageSize       int    `koanf:"page_size"`
}

type Websocket struct {
	Endpoint    string `koanf:"endpoint"`
	BaseDelayMs int    `koanf:"base_delay_ms"`
	MaxDelayMs  int    `koanf:"max_delay_ms"`
	MaxAttempts int    `koanf:"max_attempts"`
	ChannelSize int    `koanf:"channel_size"`
}

type Server struct {
	ListenAddr        string `koanf:"listen_addr"`
	HighlightWindowMs int    `koanf:"highlight_window_ms"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if c.API.BaseURL == "" {
		ve.Add("api.base_url", "cannot be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		ve.Add("api.timeout_seconds", "must be positive")
	}
	if c.Websocket.Endpoint == "" {
		ve.Add("websocket.endpoint", "cannot be empty")
	}
	if c.Websocket.BaseDelayMs <= 0 {
		ve.Add("websocket.base_delay_ms", "must be positive")
	}
	if c.Websocket.MaxDelayMs < c.Websocket.BaseDelayMs {
		ve.Add("websocket.max_delay_ms", "cannot be smaller than base_delay_ms")
	}
	if c.Websocket.MaxAttempts <= 0 {
		ve.Add("websocket.max_attempts", "must be positive")
	}
	if c.Server.ListenAddr == "" {
		ve.Add("server.listen_addr", "cannot be empty")
	}

	return ve.Err()
}
