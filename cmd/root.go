package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hmans/tweetgraph/internal/config"
	"github.com/hmans/tweetgraph/internal/graph"
	"github.com/hmans/tweetgraph/internal/logging"
	"github.com/hmans/tweetgraph/internal/metrics"
	"github.com/hmans/tweetgraph/internal/store"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	prom   *metrics.Metrics
	db     store.Store
)

var (
	configPath    string
	storeBackend  string
	logLevel      string
	skipStoreCmds = map[string]bool{"init": true, "help": true, "completion": true}
)

var rootCmd = &cobra.Command{
	Use:   "tweetgraph",
	Short: "A GraphQL API for users and tweets",
	Long: `tweetgraph serves a GraphQL API over a document database holding
users and tweets. Data lives in Cloud Firestore, or in an embedded
badger store for local development.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if storeBackend != "" {
			cfg.Store.Backend = storeBackend
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}

		if skipStoreCmds[cmd.Name()] || (cmd.Name() == "graphql" && querySchemaOnly) {
			return nil
		}

		prom = metrics.New()
		s, err := store.Open(context.Background(), cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
		}
		db = store.Instrument(s, prom)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func closeStore() error {
	if logger != nil {
		_ = logger.Sync()
	}
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// newResolver builds the root resolver from the loaded configuration.
func newResolver() *graph.Resolver {
	return &graph.Resolver{
		Store:            db,
		Logger:           logger,
		CheckTweetAuthor: cfg.GraphQL.CheckTweetAuthor,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.ConfigFile, "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend (firestore, badger); overrides the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = closeStore()
		os.Exit(1)
	}
}
