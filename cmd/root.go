package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/gestureprep/internal/config"
	"github.com/andresmejia3/gestureprep/internal/logging"
	"github.com/andresmejia3/gestureprep/internal/store"
	"github.com/andresmejia3/gestureprep/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Options holds per-command selections shared by resize, sync, status and clean.
type Options struct {
	Classes []string
	Tiers   []int
	Kernel  string
	Workers int
	Yes     bool
	DirA    string
	DirB    string
	DB      bool
}

var (
	// DB is the optional run ledger shared by subcommands. It is nil unless
	// a connection string was configured.
	DB *store.Store
	// settings is the effective configuration after flags, env and file.
	settings config.Config
	// logger is the structured logger for the pipelines.
	logger *logrus.Logger

	// die reports a fatal setup failure and exits.
	die = utils.Die

	dbURL      string
	rootPath   string
	configPath string
	logFile    string
	verbose    bool
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "gestureprep",
	Short:   "Gesture dataset normalization & tree synchronization",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = loadSettings(cmd)
		if err != nil {
			die("Failed to load settings", err)
			return err
		}

		logger, err = logging.New(logging.Options{Verbose: verbose, File: settings.LogFile, Out: cmd.ErrOrStderr()})
		if err != nil {
			err = fmt.Errorf("failed to open log file: %w", err)
			die("Failed to set up logging", err)
			return err
		}

		url := resolveDBURL(cmd, settings)
		if url == "" {
			return nil
		}
		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), url)
		if err != nil {
			err = fmt.Errorf("failed to connect to database: %w", err)
			die("Failed to open the run ledger", err)
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
			DB = nil
		}
	},
}

// loadSettings merges defaults, the config file, the environment and flags,
// in increasing order of precedence.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return c, err
		}
	}

	if env := os.Getenv("GESTUREPREP_ROOT"); env != "" {
		c.Root = env
	}
	if cmd.Flags().Changed("root") {
		c.Root = rootPath
	}
	if cmd.Flags().Changed("log-file") {
		c.LogFile = logFile
	}
	return c, nil
}

// resolveDBURL picks the ledger connection string. An empty result means
// the ledger is disabled.
func resolveDBURL(cmd *cobra.Command, c config.Config) string {
	if cmd.Flags().Changed("db") {
		return dbURL
	}
	if env := os.Getenv("GESTUREPREP_DB"); env != "" {
		return env
	}
	// If no flag was provided, try to build the connection string from the environment
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	return c.DB
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "samples", "Dataset root containing one directory per gesture class (env GESTUREPREP_ROOT)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML settings file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the run ledger (env GESTUREPREP_DB or POSTGRES_*)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write the structured log to a rotating file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}
