package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"paper-trader/pkg/utils"
)

// addWatchCommands adds watchlist and market data commands.
func addWatchCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newRefreshCmd(app))
	rootCmd.AddCommand(newMonitorCmd(app))
}

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watchlist",
		Long:  "Watched stocks have their prices refreshed automatically.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add SYMBOL",
		Short: "Add a stock to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			app.Manager.AddWatchedStock(cmd.Context(), symbol)
			if err := app.Manager.SaveData(); err != nil {
				output.Warning("Watchlist updated but not saved: %v", err)
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"added": symbol})
			}
			if price, ok := app.Manager.Engine().StockPrice(symbol); ok {
				output.Success("Watching %s @ %s", symbol, utils.FormatCurrency(price))
			} else {
				output.Success("Watching %s (no price yet)", symbol)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove SYMBOL",
		Short: "Remove a stock from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			app.Manager.RemoveWatchedStock(symbol)
			if err := app.Manager.SaveData(); err != nil {
				output.Warning("Watchlist updated but not saved: %v", err)
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": symbol})
			}
			output.Success("Stopped watching %s", symbol)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched stocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbols := app.Manager.WatchedStocks()

			if output.IsJSON() {
				return output.JSON(symbols)
			}

			if len(symbols) == 0 {
				output.Info("Watchlist is empty")
				return nil
			}

			table := NewTable(output, "SYMBOL", "COMPANY", "PRICE", "UPDATED")
			for _, symbol := range symbols {
				stock, ok := app.Manager.Engine().Stock(symbol)
				if !ok {
					table.AddRow(symbol, "", "-", "-")
					continue
				}
				table.AddRow(
					stock.Symbol,
					stock.CompanyName,
					utils.FormatCurrency(stock.CurrentPrice),
					stock.LastUpdated.Format("15:04:05"),
				)
			}
			table.Render()
			return nil
		},
	})

	return cmd
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Look up a stock quote",
		Long:  "Fetch the current quote for a symbol without watching it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			quote, err := app.Manager.SearchStock(cmd.Context(), args[0])
			if err != nil {
				output.Error("Quote lookup failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}
			output.Bold("%s (%s)", quote.Symbol, quote.CompanyName)
			output.Printf("  Price: %s\n", utils.FormatCurrency(quote.Price))
			output.Dim("  As of %s", quote.Timestamp.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh watched prices once",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			app.Manager.RefreshAllWatchedStocks(cmd.Context())
			if err := app.Manager.SaveData(); err != nil {
				output.Warning("Prices refreshed but not saved: %v", err)
			}

			symbols := app.Manager.WatchedStocks()
			if output.IsJSON() {
				return output.JSON(map[string]int{"refreshed": len(symbols)})
			}
			output.Success("Refreshed %d watched stocks", len(symbols))
			return nil
		},
	}
}

func newMonitorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Keep watched prices fresh until interrupted",
		Long: `Run the background price refresher in the foreground. Watched
prices are refreshed on the configured interval and state is saved after
each cycle. Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if !app.Config.Refresh.Auto {
				output.Warning("Auto refresh is disabled (refresh.auto = false)")
				return nil
			}

			symbols := app.Manager.WatchedStocks()
			if len(symbols) == 0 {
				output.Info("Watchlist is empty, nothing to monitor")
				return nil
			}

			app.Manager.StartAutoRefresh(app.Config.Refresh.Interval)
			output.Info("Monitoring %d stocks every %s. Press Ctrl+C to stop.", len(symbols), app.Config.Refresh.Interval)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			output.Println()
			output.Info("Stopping...")
			return app.Manager.Close()
		},
	}
}
