package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/errors"
	"github.com/notepane/notepane/internal/mcp"
	"github.com/notepane/notepane/internal/ops"
	"github.com/notepane/notepane/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// lookup supplies environment values for configuration.
func newCLIApp(lookup config.LookupFunc) *cli.App {
	app := &cli.App{
		Name:    "notepane",
		Usage:   "Note backend for the Outlook task pane",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a JSON config file", EnvVars: []string{"NOTEPANE_CONFIG"}},
		},
		Commands: []*cli.Command{
			serveCmd(lookup),
			checkCmd(lookup),
			certsCmd(),
			saveCmd(lookup),
			listCmd(lookup),
			statsCmd(lookup),
			mcpCmd(lookup),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(lookup config.LookupFunc) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server for the task pane",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides HOST)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides PORT)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, lookup)
			if err != nil {
				return outputError(err)
			}
			if c.IsSet("host") {
				cfg.Host = c.String("host")
			}
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}

			store, err := db.Open(cfg)
			if err != nil {
				return outputError(err)
			}
			defer store.Close()

			// The server starts even when the database is down; each request
			// reports its own storage failure.
			if err := store.Migrate(c.Context); err != nil {
				log.Printf("WARNING: schema setup failed: %v", err)
			}

			srv := web.NewServer(store, cfg, Version)
			if err := web.Run(srv, cfg); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// checkCmd creates the check command.
func checkCmd(lookup config.LookupFunc) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify the database connection and show recent notes",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, lookup)
			if err != nil {
				return outputError(err)
			}
			if err := runCheck(c.Context, c.App.Writer, cfg); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// certsCmd creates the certs command.
func certsCmd() *cli.Command {
	return &cli.Command{
		Name:  "certs",
		Usage: "Write a self-signed localhost certificate and key for local add-in development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: ".", Usage: "Output directory"},
			&cli.IntFlag{Name: "days", Value: 365, Usage: "Validity period in days"},
			&cli.IntFlag{Name: "bits", Value: 4096, Usage: "RSA key size"},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite existing cert.pem and key.pem"},
		},
		Action: func(c *cli.Context) error {
			out, err := writeCerts(certOptions{
				Dir:   c.String("dir"),
				Days:  c.Int("days"),
				Bits:  c.Int("bits"),
				Force: c.Bool("force"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(lookup config.LookupFunc) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a note (reads the text from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: `Owner email (default "anonymous")`},
			&cli.StringFlag{Name: "subject", Usage: "Mail subject the note refers to"},
			&cli.StringFlag{Name: "sender", Usage: "Mail sender the note refers to"},
		},
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData(c.App.Reader) {
				return outputError(errors.NewInvalidRequest("note text must be piped via stdin"))
			}

			text, err := readStdin(c.App.Reader)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			return withStore(c, lookup, func(store *db.Store, cfg *config.Config) error {
				input := ops.SaveInput{
					Text:      text,
					UserEmail: optionalFlag(c, "email"),
					Subject:   optionalFlag(c, "subject"),
					Sender:    optionalFlag(c, "sender"),
				}

				output, err := ops.Save(c.Context, store, cfg, input)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c.App.Writer, output)
			})
		},
	}
}

// listCmd creates the list command.
func listCmd(lookup config.LookupFunc) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the newest notes with previews",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Max notes to return (cannot exceed the configured cap)"},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, lookup, func(store *db.Store, cfg *config.Config) error {
				output, err := ops.List(c.Context, store, cfg, ops.ListInput{Limit: c.Int("limit")})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c.App.Writer, output)
			})
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(lookup config.LookupFunc) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the note count and the most recent notes",
		Action: func(c *cli.Context) error {
			return withStore(c, lookup, func(store *db.Store, _ *config.Config) error {
				output, err := ops.Stats(c.Context, store)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c.App.Writer, output)
			})
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(lookup config.LookupFunc) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the note tools over MCP stdio",
		Action: func(c *cli.Context) error {
			return withStore(c, lookup, func(store *db.Store, cfg *config.Config) error {
				if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
					fmt.Fprintf(c.App.ErrWriter, "warning: unknown disabled_tools: %s\n", strings.Join(unknown, ", "))
				}
				if err := mcp.Run(store, cfg, Version); err != nil {
					return outputError(errors.NewInternal(err))
				}
				return nil
			})
		},
	}
}

// Helper functions

// loadConfig builds the configuration from defaults, the --config file and the environment.
func loadConfig(c *cli.Context, lookup config.LookupFunc) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(c.String("config"), lookup)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// withStore loads config, opens and migrates the store, and runs fn.
func withStore(c *cli.Context, lookup config.LookupFunc, fn func(*db.Store, *config.Config) error) error {
	cfg, err := loadConfig(c, lookup)
	if err != nil {
		return outputError(err)
	}

	store, err := db.Init(c.Context, cfg)
	if err != nil {
		return outputError(err)
	}
	defer store.Close()

	return fn(store, cfg)
}

// optionalFlag returns a pointer to a string flag's value when it was set.
func optionalFlag(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	nErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", nErr.Code, nErr.Message), 1)
}

// stdinHasData returns true if r has piped data (not a terminal).
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from r.
func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
