package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/logging"
	"github.com/bickolasliu/intention-mcp/internal/mcp"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"log": true, "history": true, "search": true, "check": true,
	"analyze": true, "explain": true, "files": true, "write": true,
	"ui": true, "help": true,
}

// env is everything a command needs for one workspace.
type env struct {
	cfg    *config.Config
	store  *store.Store
	logger *zap.Logger
}

// opener builds the env for a workspace; an empty workspace means auto-detect.
type opener func(workspace string) (*env, error)

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	// Global flags come before the subcommand
	if arg == "--workspace" || arg == "-w" || strings.HasPrefix(arg, "--workspace=") {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  intention: why did this file change?

  Usage: intention <command> [options]
         intention --help

  MCP server mode requires piped input.`)
}

// openerFor returns an opener that loads config, logging and the store from
// the user's environment. closers collects what must run before exit.
func openerFor(closers *[]func()) opener {
	return func(workspace string) (*env, error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine working directory: %w", err)
		}

		ws, err := config.ResolveWorkspace(workspace, cwd)
		if err != nil {
			return nil, err
		}

		cfg, err := config.LoadWithRepo(filepath.Join(home, config.DirName), ws)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		logger, closeLog := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
		*closers = append(*closers, closeLog)

		st, err := store.New(ws, cfg.StorageRoot(ws), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open intent store: %w", err)
		}

		logger.Debug("workspace resolved",
			zap.String("workspace", ws),
			zap.String("storage", st.Root()))
		return &env{cfg: cfg, store: st, logger: logger}, nil
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}

	var closers []func()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	open := openerFor(&closers)

	// CLI mode: known subcommand, help or version
	if isCLIMode() || isHelpOrVersion() {
		app := newCLIApp(open)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'intention --help' for usage.\n")
		return 1
	}

	// MCP server mode (default)
	e, err := open("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	e.logger.Info("starting MCP server",
		zap.String("version", Version),
		zap.String("workspace", e.store.Workspace()))
	if err := mcp.Run(e.store, e.cfg, e.logger, Version); err != nil {
		e.logger.Error("MCP server stopped", zap.Error(err))
		return 1
	}
	return 0
}
