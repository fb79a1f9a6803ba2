package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/easypass/internal/agent"
	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/errors"
	"github.com/hpungsan/easypass/internal/ops"
	"github.com/hpungsan/easypass/internal/surface"
	"github.com/hpungsan/easypass/internal/web"
)

// maxStdinBytes bounds secrets and notes piped on stdin.
const maxStdinBytes = 1 << 20

// stdout is where command results go. Tests swap it.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "easypass",
		Usage:   "Local credential store with a right-click auto-type picker",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db),
			updateCmd(db),
			deleteCmd(db),
			showCmd(db),
			listCmd(db),
			noteCmd(db),
			groupsCmd(db),
			groupAddCmd(db),
			groupDeleteCmd(db),
			generateCmd(cfg),
			runCmd(db, cfg),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func addressFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "Group name (default: unassigned)"},
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Credential name"},
	}
}

// address reads an [id] positional or the --group/--name flags.
func address(c *cli.Context) (id int64, group, name string, err error) {
	if c.NArg() > 0 {
		id, err = strconv.ParseInt(c.Args().First(), 10, 64)
		if err != nil {
			return 0, "", "", errors.NewInvalidRequest(fmt.Sprintf("invalid id %q", c.Args().First()))
		}
		return id, "", "", nil
	}
	return 0, c.String("group"), c.String("name"), nil
}

// addCmd creates the add command.
func addCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a credential (password from --password or stdin)",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username typed by the picker"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prefer piping it on stdin)"},
			&cli.StringFlag{Name: "note", Usage: "Markdown note"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
			&cli.BoolFlag{Name: "create-group", Usage: "Create the group if it does not exist"},
		),
		Action: func(c *cli.Context) error {
			secret := c.String("password")
			if secret == "" && stdinHasData() {
				s, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				secret = s
			}

			output, err := ops.Store(c.Context, db, ops.StoreInput{
				Group:       c.String("group"),
				Name:        c.String("name"),
				Username:    c.String("username"),
				Secret:      secret,
				Note:        c.String("note"),
				Mode:        ops.StoreMode(c.String("mode")),
				CreateGroup: c.Bool("create-group"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields of a credential",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "new-group", Usage: "Move to this group"},
			&cli.StringFlag{Name: "new-name", Usage: "Rename"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "New username"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "New password"},
			&cli.BoolFlag{Name: "password-stdin", Usage: "Read the new password from stdin"},
			&cli.StringFlag{Name: "note", Usage: "Replace the note; empty clears"},
			&cli.BoolFlag{Name: "create-group", Usage: "Create --new-group if it does not exist"},
		),
		Action: func(c *cli.Context) error {
			id, group, name, err := address(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.UpdateInput{
				ID:          id,
				Group:       group,
				Name:        name,
				NewGroup:    stringFlag(c, "new-group"),
				NewName:     stringFlag(c, "new-name"),
				Username:    stringFlag(c, "username"),
				Secret:      stringFlag(c, "password"),
				Note:        stringFlag(c, "note"),
				CreateGroup: c.Bool("create-group"),
			}
			if c.Bool("password-stdin") {
				s, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Secret = &s
			}

			output, err := ops.Update(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a credential",
		ArgsUsage: "[id]",
		Flags:     addressFlags(),
		Action: func(c *cli.Context) error {
			id, group, name, err := address(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: id, Group: group, Name: name})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a credential and its note",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.BoolFlag{Name: "reveal", Usage: "Include the password"},
		),
		Action: func(c *cli.Context) error {
			id, group, name, err := address(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Fetch(c.Context, db, ops.FetchInput{
				ID:            id,
				Group:         group,
				Name:          name,
				IncludeSecret: c.Bool("reveal"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List credentials ordered by group and name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "Only this group"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{Group: c.String("group")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// noteCmd creates the note command.
func noteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "note",
		Usage:     "Replace the note of a credential (from --text or stdin)",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Note text; empty clears"},
		),
		Action: func(c *cli.Context) error {
			id, group, name, err := address(c)
			if err != nil {
				return outputError(err)
			}

			note := c.String("text")
			if !c.IsSet("text") && stdinHasData() {
				note, err = readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
			}

			output, err := ops.SetNote(c.Context, db, ops.SetNoteInput{ID: id, Group: group, Name: name, Note: note})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// groupsCmd creates the groups command.
func groupsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "List groups with credential counts",
		Action: func(c *cli.Context) error {
			output, err := ops.Groups(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// groupAddCmd creates the group-add command.
func groupAddCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "group-add",
		Usage:     "Create an empty group",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			output, err := ops.AddGroup(c.Context, db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// groupDeleteCmd creates the group-delete command.
func groupDeleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "group-delete",
		Usage:     "Delete an empty group",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteGroup(c.Context, db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// generateCmd creates the generate command.
func generateCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a random password",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "length", Aliases: []string{"l"}, Usage: "Password length (default from config)"},
			&cli.StringFlag{Name: "charset", Usage: "Characters to draw from (default from config)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Generate(cfg, ops.GenerateInput{
				Length:  c.Int("length"),
				Charset: c.String("charset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// runCmd creates the run command: the picker agent plus the management UI.
func runCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the background picker agent until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Log the picker instead of showing it and never type anything"},
			&cli.StringFlag{Name: "auto-pick", Usage: "With --dry-run, pick the first credential: oneclick|username|password"},
			&cli.BoolFlag{Name: "no-web", Usage: "Do not start the management UI"},
		},
		Action: func(c *cli.Context) error {
			var opts []agent.Option
			if c.Bool("dry-run") {
				action, err := parseAction(c.String("auto-pick"))
				if err != nil {
					return outputError(err)
				}
				opts = append(opts,
					agent.WithSurface(surface.NewLog(action)),
					agent.WithInjector(&autotype.Recorder{}),
				)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := agent.New(ops.Lister{DB: db}, cfg, opts...)
			if err := a.Start(ctx); err != nil {
				return outputError(err)
			}

			webErr := make(chan error, 1)
			if !c.Bool("no-web") {
				srv, err := web.NewServer(db, cfg, Version)
				if err != nil {
					a.Stop()
					return outputError(errors.NewInternal(err))
				}
				go func() { webErr <- web.Run(ctx, srv) }()
			}

			select {
			case <-ctx.Done():
			case err := <-webErr:
				if err != nil {
					slog.Warn("management UI stopped", "component", "cli", "err", err)
				}
				<-ctx.Done()
			}

			a.Stop()
			return outputJSON(a.Status())
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the management UI until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			webCfg := *cfg
			if c.IsSet("bind") {
				webCfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				webCfg.WebPort = c.Int("port")
			}

			srv, err := web.NewServer(db, &webCfg, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := web.Run(ctx, srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var epErr *errors.EasyPassError
	if stderrors.As(err, &epErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", epErr.Code, epErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stringFlag returns a pointer to the flag value if it was set, nil otherwise.
func stringFlag(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

// parseAction maps an --auto-pick value to a picker action. Empty means
// dismiss.
func parseAction(s string) (autotype.Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "oneclick", "one-click":
		return autotype.ActionOneClick, nil
	case "username":
		return autotype.ActionUsername, nil
	case "password":
		return autotype.ActionPassword, nil
	}
	return 0, errors.NewInvalidRequest(fmt.Sprintf("auto-pick must be oneclick, username or password (got %q)", s))
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin and trims the trailing
// newline a shell pipe adds.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
