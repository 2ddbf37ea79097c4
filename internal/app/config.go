package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/nodegrid/internal/eventbridge"
	"github.com/vk/nodegrid/internal/node"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath     string // graph document, JSON or YAML
	ManifestsPath string // directory of custom .hcl node manifests
	SavePath      string // where to write the graph document after the run

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// ProcessErrors is "degrade" or "propagate".
	ProcessErrors string

	MQTTURL         string
	MQTTClientID    string
	MQTTTopicPrefix string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, err := node.ParseProcessErrorPolicy(cfg.ProcessErrors); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	if cfg.MQTTTopicPrefix == "" {
		cfg.MQTTTopicPrefix = eventbridge.DefaultPrefix
	}
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = "nodegrid"
	}
	return &cfg, nil
}
