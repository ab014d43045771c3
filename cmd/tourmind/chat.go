// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tourmind/tourmind/internal/auth"
	authneo4j "github.com/tourmind/tourmind/internal/auth/neo4j"
	"github.com/tourmind/tourmind/internal/config"
	"github.com/tourmind/tourmind/internal/graph"
	"github.com/tourmind/tourmind/internal/llm"
	"github.com/tourmind/tourmind/internal/memory"
	memoryneo4j "github.com/tourmind/tourmind/internal/memory/neo4j"
	"github.com/tourmind/tourmind/internal/observability"
	"github.com/tourmind/tourmind/internal/router"
	"github.com/tourmind/tourmind/internal/weather"
	"github.com/tourmind/tourmind/pkg/errutil"
)

// Messages printed by the interactive loop.
const (
	welcomeBanner = "Welcome to TourMind! Your personal travel assistant."
	apologyReply  = "I'm sorry, I encountered an error processing your request."
	helpText      = `Commands:
  /prefs         show everything stored about you
  /facts <json>  record a batch of preference facts
  /logout        end the session and sign in as someone else
  /quit          exit
  /help          show this help

Anything else is sent to the assistant.`
)

// NewChatCmd creates the chat subcommand.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive travel-planning session",
		Long: `Start an interactive session with the assistant. Messages are
remembered in the preference graph, weather questions are answered with
live conditions for cities you have visited, and everything else goes to
the chat model together with what is known about you.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runChatWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("graph-uri", config.DefaultGraphURI, "graph bolt URI")
	cmd.Flags().String("graph-username", config.DefaultGraphUser, "graph username")
	cmd.Flags().String("graph-password", "", "graph password")
	cmd.Flags().String("graph-database", "", "graph database name (empty = server default)")
	cmd.Flags().String("llm-base-url", config.DefaultLLMBaseURL, "chat model API base URL")
	cmd.Flags().String("llm-model", config.DefaultLLMModel, "chat model name")
	cmd.Flags().String("weather-api-key", "", "OpenWeather API key")

	return cmd
}

// runChatWithDeps starts the chat session with injectable dependencies.
// If deps is nil, default implementations are used.
func runChatWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ChatDeps) error {
	if deps == nil {
		deps = &ChatDeps{}
	}

	// Set up default factories
	if deps.GraphConnector == nil {
		deps.GraphConnector = graph.Connect
	}
	if deps.AuthFactory == nil {
		deps.AuthFactory = func(driver neo4j.DriverWithContext, database string) (AuthService, error) {
			hasher, err := auth.NewHasher(auth.SchemeArgon2id)
			if err != nil {
				return nil, err
			}
			credentials := auth.NewCredentialStore(authneo4j.NewUserStore(driver, database), hasher)
			sessions := auth.NewSessionRegistry(auth.DefaultSessionTTL)
			return auth.NewService(credentials, sessions), nil
		}
	}
	if deps.MemoryFactory == nil {
		deps.MemoryFactory = func(driver neo4j.DriverWithContext, database string) MemoryService {
			return memory.NewService(memoryneo4j.NewStore(driver, database))
		}
	}
	if deps.LLMFactory == nil {
		deps.LLMFactory = func(cfg config.LLMConfig) llm.Client {
			return llm.NewOllama(cfg.BaseURL, cfg.Model)
		}
	}
	if deps.WeatherFactory == nil {
		deps.WeatherFactory = func(cfg config.WeatherConfig) weather.Provider {
			return weather.NewClient(cfg.BaseURL, cfg.APIKey)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.Input == nil {
		deps.Input = os.Stdin
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slog.Info("starting chat session",
		"graph_uri", cfg.Graph.URI,
		"llm_model", cfg.LLM.Model,
	)

	driver, err := deps.GraphConnector(ctx, cfg.Graph)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if closeErr := driver.Close(closeCtx); closeErr != nil {
			slog.Debug("error closing graph driver", "error", closeErr)
		}
	}()

	database := cfg.Graph.DatabaseName()
	authService, err := deps.AuthFactory(driver, database)
	if err != nil {
		return oops.Wrapf(err, "build auth service")
	}

	routes, err := router.New(cfg.Router.ExtraKeywords...)
	if err != nil {
		return err
	}

	// Start observability server if configured. Readiness follows the
	// graph connection since nothing works without it.
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer := deps.ObservabilityServerFactory(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return graph.Ping(pingCtx, driver) == nil
		})
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Wrapf(startErr, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
				slog.Warn("error stopping observability server", "error", stopErr)
			}
		}()
		metrics = obsServer.Metrics()
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	// No API key means no live conditions; weather questions then fall
	// back to the general prompt.
	var forecasts weather.Provider
	if cfg.Weather.APIKey != "" {
		forecasts = deps.WeatherFactory(cfg.Weather)
	}

	session := &chatSession{
		cmd:          cmd,
		scanner:      bufio.NewScanner(deps.Input),
		auth:         authService,
		memories:     deps.MemoryFactory(driver, database),
		llm:          deps.LLMFactory(cfg.LLM),
		weather:      forecasts,
		routes:       routes,
		metrics:      metrics,
		readPassword: deps.PasswordReader,
	}
	return session.Run(ctx)
}

// replOutcome says how a REPL round ended.
type replOutcome int

const (
	replQuit replOutcome = iota
	replLogout
	replExpired
)

// chatSession holds the state of one interactive run: the authenticated
// user, the services behind the assistant, and the input stream.
type chatSession struct {
	cmd      *cobra.Command
	scanner  *bufio.Scanner
	auth     AuthService
	memories MemoryService
	llm      llm.Client
	weather  weather.Provider
	routes   *router.Router
	metrics  *observability.Metrics

	readPassword func() (string, error)

	username string
	token    string
}

// Run drives the outer login/REPL loop until the user quits or input ends.
func (s *chatSession) Run(ctx context.Context) error {
	s.cmd.Println(welcomeBanner)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := s.authenticate(ctx)
		if err != nil {
			return err
		}
		if !ok {
			s.cmd.Println("Goodbye!")
			return nil
		}

		outcome, err := s.repl(ctx)

		s.auth.Logout(s.token)
		s.metrics.SessionClosed()
		s.username, s.token = "", ""

		if err != nil {
			return err
		}
		if outcome == replQuit {
			s.cmd.Println("Goodbye!")
			return nil
		}
		// replLogout and replExpired loop back to the login prompt.
	}
}

// authenticate runs the login/signup prompt until a session is issued.
// Returns false when the user quits or input ends.
func (s *chatSession) authenticate(ctx context.Context) (bool, error) {
	for {
		s.cmd.Println()
		choice, ok := s.readLine("[l]ogin, [s]ignup or [q]uit: ")
		if !ok {
			return false, nil
		}
		choice = strings.ToLower(strings.TrimSpace(choice))

		switch choice {
		case "q", "quit":
			return false, nil
		case "l", "login", "s", "signup":
		default:
			s.cmd.Println("Please answer l, s or q.")
			continue
		}

		username, ok := s.readLine("Username: ")
		if !ok {
			return false, nil
		}
		username = strings.TrimSpace(username)

		password, ok, err := s.promptPassword()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}

		var token string
		if choice == "s" || choice == "signup" {
			token, err = s.auth.Signup(ctx, username, password)
		} else {
			token, err = s.auth.Login(ctx, username, password)
		}
		if err != nil {
			switch errutil.Code(err) {
			case "AUTH_INVALID_CREDENTIALS":
				s.metrics.RecordLogin("invalid_credentials")
				s.cmd.Println("Invalid username or password, try again.")
				continue
			case "AUTH_INVALID_INPUT":
				s.metrics.RecordLogin("invalid_input")
				s.cmd.Println("Username and password must not be empty.")
				continue
			default:
				s.metrics.RecordLogin("error")
				return false, err
			}
		}

		s.metrics.RecordLogin("success")
		s.metrics.SessionOpened()
		s.username = username
		s.token = token
		s.cmd.Printf("Hello %s! Ask me anything about your travels. Type /help for commands.\n", username)
		return true, nil
	}
}

// repl reads and handles messages until the user leaves or the session dies.
func (s *chatSession) repl(ctx context.Context) (replOutcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return replQuit, err
		}

		line, ok := s.readLine(s.username + "> ")
		if !ok {
			return replQuit, nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Tokens expire while the prompt sits idle, so check per message.
		if !s.auth.ValidateSession(s.token) {
			s.cmd.Println("Session expired, please log in again.")
			return replExpired, nil
		}

		switch {
		case line == "/quit" || line == "/exit":
			return replQuit, nil
		case line == "/logout":
			s.cmd.Println("Logged out.")
			return replLogout, nil
		case line == "/help":
			s.cmd.Println(helpText)
		case line == "/prefs":
			s.showPreferences(ctx)
		case strings.HasPrefix(line, "/facts"):
			s.recordFacts(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/facts")))
		case strings.HasPrefix(line, "/"):
			s.cmd.Printf("Unknown command %q. Type /help for commands.\n", line)
		default:
			s.handleMessage(ctx, line)
		}
	}
}

// handleMessage runs one assistant turn: remember the message, route it,
// gather context and ask the model.
func (s *chatSession) handleMessage(ctx context.Context, message string) {
	// Remembering is best effort; a write failure must not eat the turn.
	memErr := s.memories.RecordMemory(ctx, s.username, message)
	s.metrics.RecordGraphQuery("create_memory", memErr)
	if memErr != nil {
		errutil.LogError(slog.Default(), "record memory", memErr)
	}

	route := s.routes.Route(message)
	s.metrics.RecordChatMessage(route)

	snapshot, err := s.memories.Preferences(ctx, s.username)
	s.metrics.RecordGraphQuery("snapshot", err)
	if err != nil {
		errutil.LogError(slog.Default(), "load preferences", err)
		snapshot = &memory.PreferenceSnapshot{}
	}

	prompt := router.GeneralPrompt(message, snapshot)
	if route == router.RouteWeather && s.weather != nil {
		if city := detectCity(message, snapshot); city != "" {
			conditions, weatherErr := s.weather.Current(ctx, city)
			if weatherErr != nil {
				// Fall back to the general prompt rather than losing the turn.
				errutil.LogError(slog.Default(), "fetch weather", weatherErr)
			} else {
				prompt = router.WeatherPrompt(message, city, conditions, snapshot)
			}
		} else {
			slog.Debug("no known city in weather query", "username", s.username)
		}
	}

	reply, err := s.llm.Chat(ctx, router.SystemPrompt, prompt)
	if err != nil {
		errutil.LogError(slog.Default(), "chat completion", err)
		s.cmd.Println(apologyReply)
		return
	}
	s.cmd.Println(reply)
}

// showPreferences prints the user's stored snapshot as indented JSON.
func (s *chatSession) showPreferences(ctx context.Context) {
	snapshot, err := s.memories.Preferences(ctx, s.username)
	s.metrics.RecordGraphQuery("snapshot", err)
	if err != nil {
		errutil.LogError(slog.Default(), "load preferences", err)
		s.cmd.Println("Could not load your preferences right now.")
		return
	}
	if snapshot.Empty() {
		s.cmd.Println("Nothing stored about you yet. Chat a little and I'll remember.")
		return
	}
	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		s.cmd.Printf("%+v\n", snapshot)
		return
	}
	s.cmd.Println(string(out))
}

// recordFacts validates and stores a JSON batch of preference facts.
func (s *chatSession) recordFacts(ctx context.Context, raw string) {
	if raw == "" {
		s.cmd.Println(`Usage: /facts [{"text": "loves sushi"}, ...]`)
		return
	}
	facts, err := memory.ParseFacts([]byte(raw))
	if err != nil {
		s.cmd.Printf("Invalid facts: %s\n", memory.FormatSchemaError(err))
		return
	}
	err = s.memories.RecordFacts(ctx, s.username, facts)
	s.metrics.RecordGraphQuery("create_facts", err)
	if err != nil {
		errutil.LogError(slog.Default(), "record facts", err)
		s.cmd.Println("Could not record those facts right now.")
		return
	}
	s.cmd.Printf("Recorded %d facts.\n", len(facts))
}

// detectCity finds the first visited city mentioned in the message. Only
// string-typed name properties participate; other fact shapes are skipped.
func detectCity(message string, snapshot *memory.PreferenceSnapshot) string {
	lowered := strings.ToLower(message)
	for _, city := range snapshot.VisitedCities {
		name, ok := city["name"].(string)
		if !ok || name == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

// readLine prints a prompt and reads one input line. ok is false once the
// input stream ends.
func (s *chatSession) readLine(prompt string) (string, bool) {
	s.cmd.Print(prompt)
	if !s.scanner.Scan() {
		s.cmd.Println()
		return "", false
	}
	return s.scanner.Text(), true
}

// promptPassword reads a password with echo disabled when stdin is a
// terminal. Piped input falls back to a plain line read. ok is false once
// the input stream ends.
func (s *chatSession) promptPassword() (string, bool, error) {
	if s.readPassword != nil {
		password, err := s.readPassword()
		if err != nil {
			return "", false, err
		}
		return password, true, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		s.cmd.Print("Password: ")
		raw, err := term.ReadPassword(fd)
		s.cmd.Println()
		if err != nil {
			return "", false, oops.Code("AUTH_INVALID_INPUT").Wrapf(err, "read password")
		}
		return string(raw), true, nil
	}

	line, ok := s.readLine("Password: ")
	if !ok {
		return "", false, nil
	}
	return line, true, nil
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error so a dead sidecar server takes the session down with it.
// It exits when an error arrives, the channel closes, or the context ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
