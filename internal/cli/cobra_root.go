package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"todo-api/internal/config"
)

// Version is reported by --version and in the startup banner.
const Version = "1.0.0"

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	config *config.Config
}

// NewRootCommand creates the root cobra command with global flags.
// Running it without a subcommand starts the HTTP server.
func NewRootCommand(loader *config.Loader) *RootCommand {
	root := &RootCommand{
		loader: loader,
	}

	root.cmd = &cobra.Command{
		Use:     "todo-api",
		Short:   "HTTP server for managing a todo list",
		Version: Version,
		Long: `todo-api serves a small JSON API for a todo list and keeps the list in a local file.

ENDPOINTS:
  POST /tasks                 Create a task: {"title": "...", "priority": "low|normal|high"}
  GET  /tasks                 List all tasks
  POST /tasks/{id}/complete   Mark a task as completed

EXAMPLES:
  todo-api                                 # Serve on http://localhost:8000
  todo-api -H 0.0.0.0 -p 9000              # Listen on all interfaces, port 9000
  todo-api --quiet                         # Log to the log file only
  todo-api --storage-backend sqlite --storage-file tasks.db
  todo-api stats                           # Print task counts and exit

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file (--config) > .env > defaults

    TODO_HOST                              Server host (default: localhost)
    TODO_PORT                              Server port (default: 8000)
    TODO_SHUTDOWN_TIMEOUT                  Grace period for in-flight requests (default: 5s)
    TODO_STORAGE_BACKEND                   file or sqlite (default: file)
    TODO_STORAGE_PATH                      Storage location (default: tasks.txt)
    TODO_LOG_LEVEL                         debug, info, warning, error, critical (default: info)
    TODO_LOG_FORMAT                        text, json or logfmt (default: text)
    TODO_LOG_FILE                          Log file, empty to disable (default: logs/todo_api.log)
    TODO_LOG_QUIET                         Log to the file only (default: false)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration and apply flag overrides before any command runs
			return root.getConfigFromFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runServe(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Config returns the configuration resolved for the last run
func (r *RootCommand) Config() *config.Config {
	return r.config
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "TOML configuration file")

	// Server configuration
	flags.StringP("host", "H", "localhost", "Server host (overrides TODO_HOST)")
	flags.IntP("port", "p", 8000, "Server port (overrides TODO_PORT)")
	flags.Duration("shutdown-timeout", 0, "Grace period for in-flight requests (overrides TODO_SHUTDOWN_TIMEOUT)")

	// Storage configuration
	flags.String("storage-backend", "", "Storage backend, file or sqlite (overrides TODO_STORAGE_BACKEND)")
	flags.String("storage-file", "", "Storage location (overrides TODO_STORAGE_PATH)")

	// Logging configuration
	flags.StringP("log-level", "l", "info", "Logging level (overrides TODO_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text, json or logfmt (overrides TODO_LOG_FORMAT)")
	flags.String("log-file", "", "Log file, empty to disable (overrides TODO_LOG_FILE)")
	flags.Bool("quiet", false, "Suppress console output, log to the file only (overrides TODO_LOG_QUIET)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Long:  "Load the configured storage and print task counts without starting the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewStatsCommand(r.config).Execute(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	r.cmd.AddCommand(statsCmd)
}

// getConfigFromFlags loads the configuration and applies the flags the user
// set explicitly. Flag defaults never override other sources.
func (r *RootCommand) getConfigFromFlags() error {
	if r.loader == nil {
		return fmt.Errorf("configuration loader not initialized")
	}

	flags := r.cmd.PersistentFlags()

	if path, _ := flags.GetString("config"); path != "" {
		r.loader.ConfigFile = path
	}

	overrides := &config.ConfigOverrides{
		// Server configuration
		Host:            changedString(flags, "host"),
		Port:            changedInt(flags, "port"),
		ShutdownTimeout: changedDuration(flags, "shutdown-timeout"),

		// Storage configuration
		StorageBackend: changedString(flags, "storage-backend"),
		StoragePath:    changedString(flags, "storage-file"),

		// Logging configuration
		LogLevel:  changedString(flags, "log-level"),
		LogFormat: changedString(flags, "log-format"),
		LogFile:   changedString(flags, "log-file"),
		Quiet:     changedBool(flags, "quiet"),
	}

	cfg, err := r.loader.LoadWithOverrides(overrides)
	if err != nil {
		return err
	}
	r.config = cfg
	return nil
}

// changedString returns the flag value if the user set it, nil otherwise.
func changedString(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetString(name)
	return &v
}

func changedInt(flags *pflag.FlagSet, name string) *int {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetInt(name)
	return &v
}

func changedDuration(flags *pflag.FlagSet, name string) *time.Duration {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetDuration(name)
	return &v
}

func changedBool(flags *pflag.FlagSet, name string) *bool {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetBool(name)
	return &v
}
