package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/identity"
	"github.com/bickolasliu/intention-mcp/internal/ops"
	"github.com/bickolasliu/intention-mcp/internal/web"
)

// maxStdinBytes bounds file content read by the write command.
const maxStdinBytes = 10 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(open opener) *cli.App {
	app := &cli.App{
		Name:    "intention",
		Usage:   "Per-file intent log with conflict detection",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Workspace root (default: $MCP_WORKSPACE or nearest project root)"},
		},
		Commands: []*cli.Command{
			logCmd(open),
			historyCmd(open),
			searchCmd(open),
			checkCmd(open),
			analyzeCmd(open),
			explainCmd(open),
			filesCmd(open),
			writeCmd(open),
			uiCmd(open),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// windowFlag is shared by the commands that run conflict detection.
func windowFlag() cli.Flag {
	return &cli.IntFlag{Name: "window-days", Usage: "Days of history to consider (default: config window_days)"}
}

// identityFlags are shared by the commands that record an intent.
func identityFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Author (default: config user, git identity or OS account)"},
		&cli.StringFlag{Name: "model", Usage: "AI model identifier"},
	}
}

// logCmd creates the log command.
func logCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "log",
		Usage:     "Record why a file changed",
		ArgsUsage: "<path>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "Why the change was made"},
			&cli.StringSliceFlag{Name: "override", Usage: "Id of an earlier intent this change supersedes (repeatable)"},
		}, identityFlags()...),
		Action: func(c *cli.Context) error {
			e, path, err := openWithPath(c, open)
			if err != nil {
				return outputError(err)
			}

			user, model := resolveIdentity(c, e)
			output, err := ops.Log(e.store, ops.LogInput{
				Path:      path,
				Prompt:    c.String("prompt"),
				User:      user,
				Model:     model,
				Overrides: c.StringSlice("override"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show a file's intents, newest first",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum intents to show"},
		},
		Action: func(c *cli.Context) error {
			e, path, err := openWithPath(c, open)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.History(e.store, ops.HistoryInput{
				Path:  path,
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search intent prompts across all files",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum results"},
		},
		Action: func(c *cli.Context) error {
			e, err := open(c.String("workspace"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Search(c.Context, e.store, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// checkCmd creates the check command.
func checkCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check a planned change against a file's recent intents",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "The planned change (omit to list recent intents)"},
			windowFlag(),
		},
		Action: func(c *cli.Context) error {
			e, path, err := openWithPath(c, open)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Check(e.store, e.cfg, ops.CheckInput{
				Path:       path,
				Prompt:     c.String("prompt"),
				WindowDays: c.Int("window-days"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Prepare a conflict review brief for a planned change",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "The planned change"},
			windowFlag(),
		},
		Action: func(c *cli.Context) error {
			e, path, err := openWithPath(c, open)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Analyze(e.store, e.cfg, ops.AnalyzeInput{
				Path:       path,
				Prompt:     c.String("prompt"),
				WindowDays: c.Int("window-days"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// explainCmd creates the explain command.
func explainCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Explain a file's evolution from its intent history",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			e, path, err := openWithPath(c, open)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Explain(e.store, ops.ExplainInput{Path: path})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// filesCmd creates the files command.
func filesCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "List files with recorded intents",
		Action: func(c *cli.Context) error {
			e, err := open(c.String("workspace"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Files(c.Context, e.store)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// writeCmd creates the write command.
func writeCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "Write a file from stdin and record why",
		ArgsUsage: "<path>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "Why the change is being made"},
			&cli.BoolFlag{Name: "force", Usage: "Apply despite conflicts and record them as overridden"},
			&cli.BoolFlag{Name: "skip-conflict-check", Usage: "Proceed after reviewing an escalated conflict"},
			windowFlag(),
		}, identityFlags()...),
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("file content must be piped via stdin"))
			}
			content, err := readStdin(maxStdinBytes)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			e, path, err := openWithPath(c, open)
			if err != nil {
				return outputError(err)
			}

			user, model := resolveIdentity(c, e)
			output, err := ops.Write(e.store, e.cfg, ops.WriteInput{
				Path:    path,
				Content: content,
				Prompt:  c.String("prompt"),
				User:    user,
				Model:   model,
				GateOptions: ops.GateOptions{
					Force:             c.Bool("force"),
					SkipConflictCheck: c.Bool("skip-conflict-check"),
					WindowDays:        c.Int("window-days"),
				},
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Browse intents in a local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8765, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			e, err := open(c.String("workspace"))
			if err != nil {
				return outputError(err)
			}

			srv, err := web.NewServer(e.store, e.logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := web.Run(ctx, srv, e.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// openWithPath opens the workspace and returns the command's path argument.
func openWithPath(c *cli.Context, open opener) (*env, string, error) {
	path := c.Args().First()
	if strings.TrimSpace(path) == "" {
		return nil, "", errors.NewInvalidRequest("path argument is required")
	}
	e, err := open(c.String("workspace"))
	if err != nil {
		return nil, "", err
	}
	return e, path, nil
}

// resolveIdentity resolves the author for this command invocation.
func resolveIdentity(c *cli.Context, e *env) (string, string) {
	override := c.String("user")
	if override == "" {
		override = e.cfg.User
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	r := identity.New(override, e.store.Workspace())
	user := r.User(ctx)
	e.logger.Debug("identity resolved", zap.String("user", user))
	return user, r.Model(c.String("model"))
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var iErr *errors.IntentError
	if stderrors.As(err, &iErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", iErr.Code, iErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all of stdin, failing if it exceeds limit bytes.
// Content is returned verbatim; a file's trailing newline matters.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return string(data), nil
}
