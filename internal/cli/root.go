// Package cli provides the command-line interface for the paper trading
// application.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"paper-trader/internal/config"
	"paper-trader/internal/datamanager"
	"paper-trader/internal/quotes"
	"paper-trader/internal/scoreboard"
	"paper-trader/internal/store"
	"paper-trader/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-26"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Manager *datamanager.Manager
	Scores  *scoreboard.Manager
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	source := quotes.NewRetryingSource(defaultSource(), utils.DefaultRetryConfig())
	app.Manager = datamanager.New(datamanager.Config{
		DataFile:        cfg.Trading.DataFile,
		InitialBalance:  cfg.Trading.InitialBalance,
		RefreshInterval: cfg.Refresh.Interval,
	}, source, logger)

	scoreStore, err := store.NewSQLiteStore(cfg.Scoreboard.DBFile)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize score store, scoreboard commands unavailable")
	} else {
		app.Scores = scoreboard.NewManager(scoreStore, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "paper-trader",
		Short: "Paper Trader - practice stock trading with virtual money",
		Long: `Paper Trader is a stock trading simulator for learning how markets work.

You start with virtual cash, buy and sell at market or limit prices, and
track your portfolio's performance over time. Finished sessions can be
registered on a local leaderboard.

Use 'paper-trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/paper-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradingCommands(rootCmd, app)
	addPortfolioCommands(rootCmd, app)
	addWatchCommands(rootCmd, app)
	addScoreCommands(rootCmd, app)

	return rootCmd
}

// defaultSource returns the built-in demo price source. It stands in for
// a live market-data feed and serves a fixed universe of symbols.
func defaultSource() quotes.PriceSource {
	return quotes.NewStaticSource(
		quotes.Quote{Symbol: "AAPL", CompanyName: "Apple Inc.", Price: 150.00},
		quotes.Quote{Symbol: "GOOGL", CompanyName: "Alphabet Inc.", Price: 2800.00},
		quotes.Quote{Symbol: "MSFT", CompanyName: "Microsoft Corporation", Price: 300.00},
		quotes.Quote{Symbol: "AMZN", CompanyName: "Amazon.com Inc.", Price: 3300.00},
		quotes.Quote{Symbol: "TSLA", CompanyName: "Tesla Inc.", Price: 800.00},
		quotes.Quote{Symbol: "NVDA", CompanyName: "NVIDIA Corporation", Price: 220.00},
		quotes.Quote{Symbol: "META", CompanyName: "Meta Platforms Inc.", Price: 330.00},
		quotes.Quote{Symbol: "NFLX", CompanyName: "Netflix Inc.", Price: 600.00},
	)
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Paper Trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Trading")
			output.Printf("  Initial Balance: %s\n", utils.FormatCurrency(app.Config.Trading.InitialBalance))
			output.Printf("  Data File:       %s\n", app.Config.Trading.DataFile)
			output.Println()
			output.Bold("Refresh")
			output.Printf("  Interval:        %s\n", app.Config.Refresh.Interval)
			output.Printf("  Auto:            %v\n", app.Config.Refresh.Auto)
			output.Println()
			output.Bold("Scoreboard")
			output.Printf("  Database:        %s\n", app.Config.Scoreboard.DBFile)
			output.Printf("  Nickname:        %s\n", app.Config.Scoreboard.Nickname)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Show the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			output.Info("Configuration file: %s", filepath.Join(config.DefaultConfigDir(), "config.toml"))
			output.Println("Edit this file to change settings.")
			return nil
		},
	})

	return cmd
}
