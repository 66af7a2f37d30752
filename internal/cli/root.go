// Package cli は todo コマンドのサブコマンドを定義します。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"go-json-todo/internal/client"
	"go-json-todo/internal/config"
	"go-json-todo/internal/logging"
	"go-json-todo/internal/repositories"
	"go-json-todo/internal/ui"
)

// app はサブコマンド間で共有する状態です。PersistentPreRunE で組み立てます。
type app struct {
	configPath string
	serverURL  string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
	ctrl   *client.Controller
}

// NewRootCommand は todo コマンドを作成します。
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "Manage the task list served by the todo API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "API base URL (default from config, "+config.DefaultServerURL+")")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default $TODO_CONFIG or ./"+config.DefaultConfigFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests and failures to stderr")

	root.AddCommand(
		a.listCommand(),
		a.addCommand(),
		a.toggleCommand(),
		a.rmCommand(),
		a.clearCompletedCommand(),
		a.tuiCommand(),
		a.validateCommand(),
	)
	return root
}

// Execute は引数を解釈してコマンドを実行し、終了コードを返します。
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.Discard()
	if a.verbose {
		a.logger = logging.NewWithWriter(stderr, config.LogConfig{Level: "debug", Format: cfg.Log.Format}, "todo")
	}

	if a.serverURL == "" {
		a.serverURL = cfg.Client.ServerURL
	}
	a.ctrl = client.NewController(client.New(a.serverURL), a.logger)
	return nil
}

func (a *app) listCommand() *cobra.Command {
	var filter, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.ParseFilter(filter)
			if err != nil {
				return err
			}
			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			a.ctrl.SetFilter(f)
			view := a.ctrl.View()

			switch output {
			case "text":
				return client.RenderText(cmd.OutOrStdout(), view)
			case "json":
				return client.RenderJSON(cmd.OutOrStdout(), view)
			case "html":
				return client.RenderHTML(cmd.OutOrStdout(), view)
			default:
				return fmt.Errorf("unknown output %q (want text, json or html)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(client.FilterAll), "all, active or completed")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "text, json or html")
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, err := a.ctrl.Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d  %s\n", todo.ID, client.SanitizeText(todo.Text))
			return nil
		},
	}
}

func (a *app) toggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Toggle a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			todo, err := a.ctrl.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "active"
			if todo.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d is now %s\n", todo.ID, state)
			return nil
		},
	}
}

func (a *app) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ctrl.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		},
	}
}

func (a *app) clearCompletedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task, one at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			removed, err := a.ctrl.ClearCompleted(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", removed)
			return err
		},
	}
}

func (a *app) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(cmd.Context(), a.ctrl)
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a todos.json data file against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Store.DataFile
			if len(args) == 1 {
				path = args[0]
			}
			errs, err := repositories.ValidateTodosFile(path)
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(cmd.OutOrStdout(), e)
				}
				return fmt.Errorf("%s: %d problem(s)", path, len(errs))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid ID format")
	}
	return id, nil
}
