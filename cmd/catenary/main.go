package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/markwellsdev/catenary/internal/bridge"
	"github.com/markwellsdev/catenary/internal/config"
	"github.com/markwellsdev/catenary/internal/locks"
	"github.com/markwellsdev/catenary/internal/lsp"
	"github.com/markwellsdev/catenary/internal/lsptypes"
	"github.com/markwellsdev/catenary/internal/notify"
	"github.com/markwellsdev/catenary/internal/runtool"
	"github.com/markwellsdev/catenary/internal/security"
	"github.com/markwellsdev/catenary/internal/session"
	"github.com/markwellsdev/catenary/internal/watch"
)

const (
	serverName    = "catenary"
	serverVersion = "0.1.0"
)

func defaultLogPath() string {
	stateDir, err := os.UserCacheDir()
	if err != nil {
		return "catenary.log"
	}
	return filepath.Join(stateDir, "catenary", "catenary.log")
}

func main() {
	var confPath string
	var logPath string
	var logLevel string
	var root string

	flag.StringVar(&confPath, "config", "", "Path to the Catenary TOML configuration file")
	flag.StringVar(&confPath, "c", "", "Path to the Catenary TOML configuration file (short)")
	flag.StringVar(&logPath, "log-path", defaultLogPath(), "Path to the log file")
	flag.StringVar(&logPath, "l", defaultLogPath(), "Path to the log file (short)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.StringVar(&root, "root", "", "Primary workspace root (defaults to the current directory)")
	flag.Parse()

	cfg, err := config.Load(confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catenary: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := newLogger(logPath, cfg.LogLevel)

	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to determine working directory")
		}
		root = cwd
	}
	root, err = filepath.Abs(root)
	if err != nil {
		log.Fatal().Err(err).Str("root", root).Msg("failed to resolve workspace root")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	servers := make(map[string]lsp.ServerConfig, len(cfg.Servers))
	for lang, sc := range cfg.Servers {
		servers[lang] = lsp.ServerConfig{Command: sc.Command, Args: sc.Args}
	}
	manager := lsp.NewManager(servers, log)
	manager.AddRoot(ctx, root) //nolint:errcheck // AddRoot never fails before any client is spawned

	validator := security.New([]string{root})

	stateDir, err := os.UserCacheDir()
	if err != nil {
		stateDir = os.TempDir()
	}
	lockMgr := locks.NewManager(filepath.Join(stateDir, "catenary"))

	configuredServers := make(map[string]bool, len(servers))
	for lang := range servers {
		configuredServers[lang] = true
	}
	languages, err := lsp.DetectWorkspaceLanguages([]string{root}, configuredServers)
	if err != nil {
		log.Warn().Err(err).Msg("workspace language detection failed")
	}
	runAllowed := cfg.Tools.Run.Allowed
	runLanguages := make(map[string][]string, len(cfg.Tools.Run.Languages))
	for lang, lc := range cfg.Tools.Run.Languages {
		runLanguages[lang] = lc.Allowed
	}
	runMgr := runtool.NewManager([]string{root}, runAllowed, runLanguages, lsp.DetectWorkspaceLanguages)

	log.Info().Strs("languages", mapKeys(languages)).Msg("detected workspace languages")
	manager.SpawnAll(ctx, languages)

	sess := session.New(root)
	log.Info().Str("session_id", sess.Snapshot().ID).Msg("session started")

	handler := bridge.New(manager, validator, lockMgr, runMgr, log)

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithInstructions("Catenary multiplexes several language servers behind a single MCP tool surface: call hover/definition/references/etc. with an absolute file_path and Catenary spawns, syncs, and queries the right language server on demand."),
	)
	bridge.Register(mcpServer, handler)

	idleTimeout := time.Duration(cfg.IdleTimeoutSecs) * time.Second
	stopCleanup := startIdleCleanup(ctx, handler, idleTimeout)
	defer stopCleanup()

	var notifyListener interface{ Close() error }
	if cfg.NotifySocket != "" {
		notifyProcess := func(path string) ([]lsptypes.Diagnostic, error) {
			return handler.WaitForDiagnostics(ctx, path)
		}
		notifySrv := notify.NewServer(cfg.NotifySocket, notifyProcess, log)
		ln, err := notifySrv.Start()
		if err != nil {
			log.Warn().Err(err).Msg("failed to start notify socket")
		} else {
			notifyListener = ln
			log.Info().Str("socket", cfg.NotifySocket).Msg("notify socket listening")
		}
	}

	var watcher *watch.Watcher
	if mode := watch.ModeFromEnv(os.Getenv("CATENARY_WATCH")); mode == watch.ModeFsnotify {
		watcher, err = watch.New([]string{root}, func(path string) {
			log.Debug().Str("path", path).Msg("watch: change detected")
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to start file watcher")
		}
	}

	go func() {
		<-signalChan
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			log.Error().Err(err).Msg("mcp server exited")
		}
		cancel()
	}()

	<-ctx.Done()

	if watcher != nil {
		_ = watcher.Close()
	}
	if notifyListener != nil {
		_ = notifyListener.Close()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	manager.ShutdownAll(shutdownCtx)
}

func newLogger(logPath, level string) zerolog.Logger {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "catenary: failed to create log directory: %v\n", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	var writer *os.File
	if err != nil {
		fmt.Fprintf(os.Stderr, "catenary: failed to open log file %s, logging to stderr: %v\n", logPath, err)
		writer = os.Stderr
	} else {
		writer = file
	}

	zerolog.SetGlobalLevel(parseLevel(level))
	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func mapKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// startIdleCleanup periodically closes documents idle past idleTimeout
// across every active language client, per SPEC_FULL.md §5.9.
func startIdleCleanup(ctx context.Context, handler *bridge.Handler, idleTimeout time.Duration) func() {
	done := make(chan struct{})
	ticker := time.NewTicker(idleTimeout / 2)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				handler.CleanIdleDocuments(ctx, idleTimeout)
			}
		}
	}()
	return func() { close(done) }
}
