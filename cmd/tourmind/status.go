package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tourmind/tourmind/internal/config"
	"github.com/tourmind/tourmind/internal/graph"
	"github.com/tourmind/tourmind/internal/llm"
	"github.com/tourmind/tourmind/internal/weather"
)

// ServiceStatus holds the reachability report for one backing service.
type ServiceStatus struct {
	Service   string `json:"service"`
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// Default per-service timeout for status checks.
const defaultStatusTimeout = 5 * time.Second

// NewStatusCmd creates the status subcommand with all flags configured.
func NewStatusCmd() *cobra.Command {
	scfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show reachability of the backing services",
		Long:  `Check the graph database, the chat model endpoint and the weather API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runStatusWithDeps(cmd.Context(), cfg, scfg, cmd, nil)
		},
	}

	// Register flags
	cmd.Flags().BoolVar(&scfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&scfg.timeout, "timeout", defaultStatusTimeout, "per-service check timeout")
	cmd.Flags().String("graph-uri", config.DefaultGraphURI, "graph bolt URI")
	cmd.Flags().String("graph-username", config.DefaultGraphUser, "graph username")
	cmd.Flags().String("graph-password", "", "graph password")
	cmd.Flags().String("llm-base-url", config.DefaultLLMBaseURL, "chat model API base URL")
	cmd.Flags().String("llm-model", config.DefaultLLMModel, "chat model name")
	cmd.Flags().String("weather-api-key", "", "OpenWeather API key")

	return cmd
}

// runStatusWithDeps executes the status command with injectable pingers.
// If deps is nil, default implementations are used.
func runStatusWithDeps(ctx context.Context, cfg *config.Config, scfg *statusConfig, cmd *cobra.Command, deps *StatusDeps) error {
	if deps == nil {
		deps = &StatusDeps{}
	}
	if deps.GraphPinger == nil {
		deps.GraphPinger = func(ctx context.Context, gcfg graph.Config) error {
			driver, err := graph.Connect(ctx, gcfg)
			if err != nil {
				return err
			}
			defer func() { _ = driver.Close(ctx) }()
			return graph.Ping(ctx, driver)
		}
	}
	if deps.LLMPinger == nil {
		deps.LLMPinger = func(ctx context.Context, lcfg config.LLMConfig) error {
			return llm.NewOllama(lcfg.BaseURL, lcfg.Model).Ping(ctx)
		}
	}
	if deps.WeatherPinger == nil {
		deps.WeatherPinger = func(ctx context.Context, wcfg config.WeatherConfig) error {
			return weather.NewClient(wcfg.BaseURL, wcfg.APIKey).Ping(ctx)
		}
	}

	statuses := []ServiceStatus{
		checkService(ctx, "graph", cfg.Graph.URI, scfg.timeout, func(ctx context.Context) error {
			return deps.GraphPinger(ctx, cfg.Graph)
		}),
		checkService(ctx, "llm", cfg.LLM.BaseURL, scfg.timeout, func(ctx context.Context) error {
			return deps.LLMPinger(ctx, cfg.LLM)
		}),
	}

	// A weather check without a key would only ever report 401.
	if cfg.Weather.APIKey == "" {
		statuses = append(statuses, ServiceStatus{
			Service: "weather",
			Detail:  "API key not configured",
		})
	} else {
		statuses = append(statuses, checkService(ctx, "weather", cfg.Weather.BaseURL, scfg.timeout, func(ctx context.Context) error {
			return deps.WeatherPinger(ctx, cfg.Weather)
		}))
	}

	// Format and output the results
	var output string
	var err error

	if scfg.jsonOutput {
		output, err = formatStatusJSON(statuses)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
	} else {
		output = formatStatusTable(statuses)
	}

	cmd.Println(output)
	return nil
}

// checkService runs one pinger under its own timeout.
func checkService(ctx context.Context, name, detail string, timeout time.Duration, ping func(context.Context) error) ServiceStatus {
	status := ServiceStatus{Service: name, Detail: detail}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		status.Error = err.Error()
		return status
	}

	status.Reachable = true
	return status
}

// formatStatusTable formats the statuses as a human-readable table.
func formatStatusTable(statuses []ServiceStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	// Header
	_, _ = fmt.Fprintln(w, "SERVICE\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(w, "-------\t------\t------")

	for _, status := range statuses {
		switch {
		case status.Reachable:
			_, _ = fmt.Fprintf(w, "%s\tok\t%s\n", status.Service, status.Detail)
		case status.Error != "":
			_, _ = fmt.Fprintf(w, "%s\tunreachable\t%s\n", status.Service, status.Error)
		default:
			_, _ = fmt.Fprintf(w, "%s\tskipped\t%s\n", status.Service, status.Detail)
		}
	}

	_ = w.Flush()
	return string(buf)
}

// formatStatusJSON formats the statuses as JSON.
func formatStatusJSON(statuses []ServiceStatus) (string, error) {
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal status: %w", err)
	}
	return string(data), nil
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
