package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/nodegrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("nodegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
nodegrid - Runs a graph of typed, connected nodes.

Usage:
  nodegrid [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a graph document (JSON or YAML) listing cards and connections.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the graph document.")
	gFlag := flagSet.String("g", "", "Path to the graph document (shorthand).")
	manifestsFlag := flagSet.String("manifests", "", "Directory of custom .hcl node manifests.")
	saveFlag := flagSet.String("save", "", "Write the graph document, with saved inputs, to this path after the run.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	processErrorsFlag := flagSet.String("process-errors", "degrade", "What a failing node does. Options: 'degrade' or 'propagate'.")
	mqttURLFlag := flagSet.String("mqtt-url", "", "MQTT broker URL. Node events are published there when set.")
	mqttClientFlag := flagSet.String("mqtt-client-id", "nodegrid", "MQTT client identifier.")
	mqttPrefixFlag := flagSet.String("mqtt-topic-prefix", "nodegrid", "Topic prefix for published node events.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	switch {
	case *graphFlag != "":
		path = *graphFlag
	case *gFlag != "":
		path = *gFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:       path,
		ManifestsPath:   *manifestsFlag,
		SavePath:        *saveFlag,
		LogFormat:       strings.ToLower(*logFormatFlag),
		LogLevel:        strings.ToLower(*logLevelFlag),
		HealthcheckPort: *healthPortFlag,
		ProcessErrors:   *processErrorsFlag,
		MQTTURL:         *mqttURLFlag,
		MQTTClientID:    *mqttClientFlag,
		MQTTTopicPrefix: *mqttPrefixFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
