package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"paper-trader/internal/scoreboard"
	"paper-trader/pkg/utils"
)

var errScoreboardUnavailable = errors.New("scoreboard store is unavailable")

// addScoreCommands adds leaderboard commands.
func addScoreCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Session leaderboard",
		Long:  "Register finished sessions and browse the local leaderboard.",
	}

	cmd.AddCommand(newScoresTopCmd(app))
	cmd.AddCommand(newScoresRegisterCmd(app))
	cmd.AddCommand(newScoresPlayerCmd(app))

	rootCmd.AddCommand(cmd)
}

func newScoresTopCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Scores == nil {
				return errScoreboardUnavailable
			}
			output := NewOutput(cmd)

			limit, _ := cmd.Flags().GetInt("limit")
			records, err := app.Scores.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Info("No scores registered yet")
				return nil
			}
			renderRecords(output, records, true)
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "number of records to show")
	return cmd
}

func newScoresRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register [NICKNAME]",
		Short: "Register the current session on the leaderboard",
		Long: `Save the current portfolio's result as a score record. The nickname
defaults to the configured one. A session whose total value has fallen
below the bankruptcy threshold is recorded as a bankruptcy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Scores == nil {
				return errScoreboardUnavailable
			}
			output := NewOutput(cmd)

			nickname := app.Config.Scoreboard.Nickname
			if len(args) == 1 {
				nickname = args[0]
			}

			// Value the session at fresh prices before scoring it.
			app.Manager.RefreshAllWatchedStocks(cmd.Context())
			snap := app.Manager.Engine().Snapshot()

			resultType := scoreboard.ResultManualSave
			if scoreboard.IsBankrupt(snap) {
				resultType = scoreboard.ResultBankruptcy
			}

			record, err := app.Scores.RegisterScore(cmd.Context(), nickname, snap, resultType)
			if err != nil {
				output.Error("Failed to register score: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(record)
			}
			output.Success("Score registered for %s", record.Nickname)
			output.Printf("  Grade:       %s\n", record.Grade())
			output.Printf("  Return:      %s\n", output.FormatPercent(record.ReturnRate))
			output.Printf("  Final Value: %s\n", utils.FormatCurrency(record.FinalBalance))
			output.Printf("  Rank Score:  %.1f\n", record.RankScore())
			if resultType == scoreboard.ResultBankruptcy {
				output.Warning("Session ended in bankruptcy")
			}
			return nil
		},
	}
}

func newScoresPlayerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "player NICKNAME",
		Short: "Show one player's records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Scores == nil {
				return errScoreboardUnavailable
			}
			output := NewOutput(cmd)

			records, err := app.Scores.PlayerRecords(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Info("No records for %s", args[0])
				return nil
			}
			renderRecords(output, records, false)
			return nil
		},
	}
}

func renderRecords(output *Output, records []scoreboard.Record, ranked bool) {
	headers := []string{"PLAYER", "GRADE", "RETURN", "FINAL VALUE", "TRADES", "DAYS", "RESULT"}
	if ranked {
		headers = append([]string{"#"}, headers...)
	}

	table := NewTable(output, headers...)
	for i, r := range records {
		row := []string{
			r.Nickname,
			r.Grade(),
			output.FormatPercent(r.ReturnRate),
			utils.FormatCurrency(r.FinalBalance),
			fmt.Sprintf("%d", r.TotalTrades),
			fmt.Sprintf("%d", r.HoldingPeriodDays),
			string(r.ResultType),
		}
		if ranked {
			row = append([]string{fmt.Sprintf("%d", i+1)}, row...)
		}
		table.AddRow(row...)
	}
	table.Render()
}
