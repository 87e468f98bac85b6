package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/anvilmcp/anvil/internal/config"
	"github.com/anvilmcp/anvil/internal/daemon"
	"github.com/anvilmcp/anvil/internal/httpd"
	"github.com/anvilmcp/anvil/internal/logger"
	"github.com/anvilmcp/anvil/internal/mcp"
	"github.com/anvilmcp/anvil/internal/tools"
	"github.com/anvilmcp/anvil/internal/tools/files"
	"github.com/anvilmcp/anvil/internal/tools/scratch"
	"github.com/anvilmcp/anvil/pkg/version"
)

var (
	configPath   string
	socketPath   string
	httpAddr     string
	toolsRoot    string
	logLevel     string
	noStdio      bool
	printVersion bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file (default: ~/.anvil/config.yaml)")
	flag.StringVar(&socketPath, "socket", "", "Serve on this unix socket")
	flag.StringVar(&httpAddr, "http", "", "Serve the HTTP gateway on this address")
	flag.StringVar(&toolsRoot, "root", "", "Sandbox root for the filesystem toolset")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&noStdio, "no-stdio", false, "Disable the stdio transport")
	flag.BoolVar(&printVersion, "version", false, "Print version and exit")
}

func main() {
	flag.Parse()

	if printVersion {
		fmt.Printf("anvil %s (protocol %s)\n", version.Version, version.ProtocolVersion)
		return
	}

	// Best effort; a missing .env is not an error.
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "anvil: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "anvil: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	log := logger.ForComponent("main")

	instanceID := uuid.NewString()

	registry, err := buildRegistry(cfg, instanceID)
	if err != nil {
		log.Error("tool registration failed", "error", err)
		os.Exit(1)
	}

	server := mcp.NewServer(registry, mcp.Options{
		ServerName:      cfg.Server.Name,
		ServerVersion:   cfg.Server.Version,
		ProtocolVersion: cfg.Server.ProtocolVersion,
	})

	log.Info("starting",
		"version", cfg.Server.Version,
		"instance_id", instanceID,
		"tools", registry.Len(),
		"stdio", cfg.Transport.Stdio,
		"socket", cfg.Transport.Socket,
		"http", cfg.Transport.HTTP)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, server, instanceID, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if socketPath != "" {
		cfg.Transport.Socket = socketPath
	}
	if httpAddr != "" {
		cfg.Transport.HTTP = httpAddr
	}
	if toolsRoot != "" {
		cfg.Tools.Root = toolsRoot
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if noStdio {
		cfg.Transport.Stdio = false
	}
}

func buildRegistry(cfg *config.Config, instanceID string) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	if err := registry.Register(tools.NewHealthTool(cfg.Server.Name, cfg.Server.Version, instanceID, registry)); err != nil {
		return nil, err
	}

	if cfg.Tools.Root != "" {
		watchTimeout := time.Duration(cfg.Tools.WatchTimeoutMS) * time.Millisecond
		fileTools, err := files.GetTools(cfg.Tools.Root, watchTimeout)
		if err != nil {
			return nil, fmt.Errorf("files: %w", err)
		}
		for _, tool := range fileTools {
			if err := registry.Register(tool); err != nil {
				return nil, fmt.Errorf("files: %w", err)
			}
		}
	}

	if cfg.Tools.Scratch {
		scratchTools, err := scratch.GetTools()
		if err != nil {
			return nil, fmt.Errorf("scratch: %w", err)
		}
		for _, tool := range scratchTools {
			if err := registry.Register(tool); err != nil {
				return nil, fmt.Errorf("scratch: %w", err)
			}
		}
	}

	return registry, nil
}

func run(ctx context.Context, cfg *config.Config, server *mcp.Server, instanceID string, log *slog.Logger) error {
	if cfg.Transport.Socket != "" {
		d := daemon.New(cfg.Transport.Socket, server)
		if err := d.Start(ctx); err != nil {
			return err
		}
		defer d.Shutdown()
	}

	if cfg.Transport.HTTP != "" {
		gateway := httpd.New(httpd.Config{
			Addr:       cfg.Transport.HTTP,
			Token:      cfg.Transport.HTTPToken,
			ServerName: cfg.Server.Name,
			Version:    cfg.Server.Version,
			InstanceID: instanceID,
		}, server)

		errCh := make(chan error, 1)
		go func() { errCh <- gateway.Start() }()
		defer func() {
			if err := gateway.Shutdown(5 * time.Second); err != nil {
				log.Warn("http shutdown incomplete", "error", err)
			}
		}()

		if !cfg.Transport.Stdio {
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return nil
			}
		}
	}

	if cfg.Transport.Stdio {
		// Blocks until stdin closes or the context is cancelled. Stdout
		// carries only protocol traffic.
		return server.ProcessStream(ctx, os.Stdin, os.Stdout)
	}

	<-ctx.Done()
	return nil
}
