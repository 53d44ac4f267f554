package cli

import (
	"github.com/spf13/cobra"

	"paper-trader/internal/models"
	"paper-trader/pkg/utils"
)

// addPortfolioCommands adds portfolio reporting commands.
func addPortfolioCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newPositionsCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show portfolio summary",
		Long:  "Show cash balance, invested amount, total value and overall P&L.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			// Value holdings at fresh prices when possible.
			app.Manager.RefreshAllWatchedStocks(cmd.Context())
			summary := app.Manager.Engine().PortfolioSummary()

			if output.IsJSON() {
				return output.JSON(summary)
			}

			output.Bold("Portfolio Summary")
			output.Printf("  Cash Balance:   %s\n", utils.FormatCurrency(summary.CashBalance))
			output.Printf("  Invested:       %s\n", utils.FormatCurrency(summary.TotalInvested))
			output.Printf("  Total Value:    %s\n", utils.FormatCurrency(summary.TotalValue))
			output.Printf("  Total P&L:      %s (%s)\n", output.FormatPnL(summary.TotalPnL), output.FormatPercent(summary.TotalPnLPercent))
			output.Printf("  Positions:      %d\n", summary.PositionsCount)
			output.Printf("  Started With:   %s\n", utils.FormatCurrency(summary.InitialBalance))
			return nil
		},
	}
}

func newPositionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Show open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			app.Manager.RefreshAllWatchedStocks(cmd.Context())
			positions := app.Manager.Engine().PositionsSummary()

			if output.IsJSON() {
				return output.JSON(positions)
			}

			if len(positions) == 0 {
				output.Info("No open positions")
				return nil
			}

			table := NewTable(output, "SYMBOL", "QTY", "AVG PRICE", "PRICE", "VALUE", "P&L", "P&L %")
			for _, p := range positions {
				table.AddRow(
					p.Symbol,
					utils.FormatQuantity(p.Quantity),
					utils.FormatCurrency(p.AveragePrice),
					utils.FormatCurrency(p.CurrentPrice),
					utils.FormatCurrency(p.CurrentValue),
					output.FormatPnL(p.PnL),
					output.FormatPercent(p.PnLPercent),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			limit, _ := cmd.Flags().GetInt("limit")
			transactions := app.Manager.Engine().RecentTransactions(limit)

			if output.IsJSON() {
				return output.JSON(transactions)
			}

			if len(transactions) == 0 {
				output.Info("No transactions yet")
				return nil
			}

			table := NewTable(output, "DATE", "SIDE", "SYMBOL", "QTY", "PRICE", "FEES", "TOTAL")
			for _, tx := range transactions {
				side := tx.TransactionType
				cell := string(side)
				if side == models.TransactionBuy {
					cell = output.ColoredString(ColorGreen, cell)
				} else {
					cell = output.ColoredString(ColorRed, cell)
				}
				table.AddRow(
					tx.Timestamp.Format("2006-01-02 15:04"),
					cell,
					tx.Symbol,
					utils.FormatQuantity(tx.Quantity),
					utils.FormatCurrency(tx.Price),
					utils.FormatCurrency(tx.Commission+tx.Tax),
					utils.FormatCurrency(tx.TotalAmount),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of transactions to show")
	return cmd
}
