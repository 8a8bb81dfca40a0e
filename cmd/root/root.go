// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"fjacquet/mis-parser/internal/config"
	"fjacquet/mis-parser/internal/container"
	"fjacquet/mis-parser/internal/logging"

	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "mis-parser",
		Short: "A CLI tool to normalize merchant settlement (MIS) files into canonical tables.",
		Long: `mis-parser fetches MIS files from local disk, S3 or GCS, unpacks password
protected archives, reads CSV, TXT, Excel, PDF and MT940 inputs and maps them onto
the canonical MIS column vocabulary configured per source.`,
		SilenceUsage:      true,
		PersistentPreRunE: preRun,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// SharedFlags holds the values of the persistent flags.
	SharedFlags = GlobalFlags{}

	appConfig    *config.Config
	appContainer *container.Container
	mu           sync.Mutex
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default searches $HOME/.mis-parser, .mis-parser and .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func preRun(cmd *cobra.Command, args []string) error {
	config.LoadEnv(Log)

	cfg, err := config.Load(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}

	mu.Lock()
	appConfig = cfg
	mu.Unlock()
	Log = config.ConfigureLoggingFromConfig(cfg)
	return nil
}

// GetConfig returns the configuration loaded by the root command.
func GetConfig() *config.Config {
	mu.Lock()
	defer mu.Unlock()
	return appConfig
}

// GetContainer builds the application container on first use. When metrics
// are enabled the /metrics endpoint starts with it.
func GetContainer(ctx context.Context) (*container.Container, error) {
	mu.Lock()
	defer mu.Unlock()
	if appContainer != nil {
		return appContainer, nil
	}
	if appConfig == nil {
		return nil, errors.New("configuration not loaded")
	}

	c, err := container.NewContainer(ctx, appConfig)
	if err != nil {
		return nil, err
	}
	appContainer = c

	if appConfig.Metrics.Enabled {
		addr := appConfig.Metrics.Address
		rec := c.GetMetrics()
		go func() {
			if err := rec.Serve(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Log.WithError(err).Warn("Metrics endpoint stopped",
					logging.Field{Key: "address", Value: addr})
			}
		}()
		Log.Info("Serving metrics", logging.Field{Key: "address", Value: addr})
	}
	return appContainer, nil
}

// SetContainer replaces the application container. Intended for tests.
func SetContainer(c *container.Container) {
	mu.Lock()
	defer mu.Unlock()
	appContainer = c
}

// Close releases the container, if one was built.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if appContainer == nil {
		return
	}
	if err := appContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close container")
	}
	appContainer = nil
}
