package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"paper-trader/internal/models"
	"paper-trader/pkg/utils"
)

// addTradingCommands adds order placement commands.
func addTradingCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newCostCmd(app))
	rootCmd.AddCommand(newResetCmd(app))
}

func newBuyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy SYMBOL QUANTITY",
		Short: "Buy shares",
		Long: `Buy shares of a stock at the current market price, or at a fixed
price with --limit. The order is rejected if cash cannot cover the
shares plus commission.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd, app, models.TransactionBuy, args)
		},
	}
	cmd.Flags().Float64("limit", 0, "limit price (default: market order)")
	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell SYMBOL QUANTITY",
		Short: "Sell shares",
		Long: `Sell shares of a stock at the current market price, or at a fixed
price with --limit. The order is rejected if the position holds fewer
shares than requested.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd, app, models.TransactionSell, args)
		},
	}
	cmd.Flags().Float64("limit", 0, "limit price (default: market order)")
	return cmd
}

func runOrder(cmd *cobra.Command, app *App, side models.TransactionType, args []string) error {
	output := NewOutput(cmd)

	symbol := strings.ToUpper(args[0])
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", args[1], err)
	}
	limit, _ := cmd.Flags().GetFloat64("limit")

	order := &models.OrderRequest{
		Symbol:          symbol,
		TransactionType: side,
		OrderType:       models.OrderTypeMarket,
		Quantity:        quantity,
	}
	if limit > 0 {
		order.OrderType = models.OrderTypeLimit
		order.Price = limit
	}

	// Make sure a market order has a price to trade at.
	if order.OrderType == models.OrderTypeMarket {
		if _, ok := app.Manager.Engine().StockPrice(symbol); !ok {
			if err := app.Manager.RefreshStockPrice(cmd.Context(), symbol); err != nil {
				output.Error("No price available for %s: %v", symbol, err)
				return err
			}
		}
	}

	tx, err := app.Manager.PlaceOrder(order)
	if err != nil {
		output.Error("Order rejected: %v", err)
		return err
	}

	if output.IsJSON() {
		return output.JSON(tx)
	}

	verb := "Bought"
	if tx.TransactionType == models.TransactionSell {
		verb = "Sold"
	}
	output.Success("%s %s %s @ %s", verb, utils.FormatQuantity(tx.Quantity), tx.Symbol, utils.FormatCurrency(tx.Price))
	output.Printf("  Commission: %s\n", utils.FormatCurrency(tx.Commission))
	if tx.Tax > 0 {
		output.Printf("  Tax:        %s\n", utils.FormatCurrency(tx.Tax))
	}
	output.Printf("  Total:      %s\n", utils.FormatCurrency(tx.TotalAmount))
	output.Printf("  Cash:       %s\n", utils.FormatCurrency(app.Manager.Engine().PortfolioSummary().CashBalance))
	return nil
}

func newCostCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost SYMBOL QUANTITY",
		Short: "Estimate order cost before placing it",
		Long: `Estimate the cost of buying a quantity of shares, including
commission. The sell tax is charged only when an order executes, so it
is not part of the estimate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol := strings.ToUpper(args[0])
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			limit, _ := cmd.Flags().GetFloat64("limit")

			orderType := models.OrderTypeMarket
			if limit > 0 {
				orderType = models.OrderTypeLimit
			}

			eng := app.Manager.Engine()
			if orderType == models.OrderTypeMarket {
				if _, ok := eng.StockPrice(symbol); !ok {
					if err := app.Manager.RefreshStockPrice(cmd.Context(), symbol); err != nil {
						output.Error("No price available for %s: %v", symbol, err)
						return err
					}
				}
			}

			cost, err := eng.CalculateOrderCost(symbol, quantity, orderType, limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]float64{
					"net_amount": cost.NetAmount,
					"commission": cost.Commission,
					"tax":        cost.Tax,
					"total_cost": cost.TotalCost,
				})
			}

			output.Bold("Estimated cost for %d x %s", quantity, symbol)
			output.Printf("  Shares:     %s\n", utils.FormatCurrency(cost.NetAmount))
			output.Printf("  Commission: %s\n", utils.FormatCurrency(cost.Commission))
			output.Printf("  Total:      %s\n", utils.FormatCurrency(cost.TotalCost))
			return nil
		},
	}
	cmd.Flags().Float64("limit", 0, "limit price (default: market order)")
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the portfolio to a fresh balance",
		Long: `Wipe all positions and transaction history and restore the cash
balance. Cached prices and the watchlist are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			balance, _ := cmd.Flags().GetFloat64("balance")
			if balance <= 0 {
				balance = app.Config.Trading.InitialBalance
			}

			if err := app.Manager.ResetPortfolio(balance); err != nil {
				output.Error("Reset failed: %v", err)
				return err
			}
			if app.Scores != nil {
				app.Scores.ResetSessionTimer()
			}

			if output.IsJSON() {
				return output.JSON(map[string]float64{"balance": balance})
			}
			output.Success("Portfolio reset to %s", utils.FormatCurrency(balance))
			return nil
		},
	}
	cmd.Flags().Float64("balance", 0, "starting balance (default: configured initial balance)")
	return cmd
}
