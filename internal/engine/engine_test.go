package engine

import (
	"math"
	"testing"

	"paper-trader/internal/errors"
	"paper-trader/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func marketBuy(symbol string, qty int) *models.OrderRequest {
	return &models.OrderRequest{
		Symbol:          symbol,
		TransactionType: models.TransactionBuy,
		OrderType:       models.OrderTypeMarket,
		Quantity:        qty,
	}
}

func marketSell(symbol string, qty int) *models.OrderRequest {
	return &models.OrderRequest{
		Symbol:          symbol,
		TransactionType: models.TransactionSell,
		OrderType:       models.OrderTypeMarket,
		Quantity:        qty,
	}
}

func TestCalculateCommission(t *testing.T) {
	e := New(100000)

	tests := []struct {
		amount float64
		want   float64
	}{
		{0, 100},            // floor
		{1500, 100},         // 0.225 below floor
		{1000000, 150},      // above floor
		{666666.67, 100.00}, // exactly at floor boundary
	}

	for _, tt := range tests {
		got := e.CalculateCommission(tt.amount)
		if !almostEqual(got, tt.want) {
			t.Errorf("CalculateCommission(%f) = %f, want %f", tt.amount, got, tt.want)
		}
	}
}

func TestCalculateTax(t *testing.T) {
	e := New(100000)

	if got := e.CalculateTax(1600, true); !almostEqual(got, 4) {
		t.Errorf("sell tax = %f, want 4", got)
	}
	if got := e.CalculateTax(1600, false); got != 0 {
		t.Errorf("buy tax = %f, want 0", got)
	}
}

func TestCalculateOrderCostReportsZeroTax(t *testing.T) {
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")

	// The estimate never includes sell tax; tax is charged only inside
	// the sell execution path.
	cost, err := e.CalculateOrderCost("AAPL", 10, models.OrderTypeMarket, 0)
	if err != nil {
		t.Fatalf("CalculateOrderCost: %v", err)
	}
	if cost.Tax != 0 {
		t.Errorf("estimate tax = %f, want 0", cost.Tax)
	}
	if !almostEqual(cost.NetAmount, 1500) {
		t.Errorf("net amount = %f, want 1500", cost.NetAmount)
	}
	if !almostEqual(cost.Commission, 100) {
		t.Errorf("commission = %f, want 100", cost.Commission)
	}
	if !almostEqual(cost.TotalCost, 1600) {
		t.Errorf("total cost = %f, want 1600", cost.TotalCost)
	}
}

func TestCalculateOrderCostNoPrice(t *testing.T) {
	e := New(100000)

	_, err := e.CalculateOrderCost("GHOST", 10, models.OrderTypeMarket, 0)
	if !errors.Is(err, errors.ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}

	// LIMIT resolves from the supplied price, no cache needed.
	cost, err := e.CalculateOrderCost("GHOST", 10, models.OrderTypeLimit, 50)
	if err != nil {
		t.Fatalf("limit order cost: %v", err)
	}
	if !almostEqual(cost.NetAmount, 500) {
		t.Errorf("net amount = %f, want 500", cost.NetAmount)
	}
}

func TestExecuteBuyScenario(t *testing.T) {
	// BUY 10 AAPL at 150.00 from 100000 cash:
	// commission = max(1500*0.00015, 100) = 100, cash = 100000-1500-100.
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")

	tx, err := e.ExecuteOrder(marketBuy("AAPL", 10))
	if err != nil {
		t.Fatalf("ExecuteOrder: %v", err)
	}

	if !almostEqual(tx.Commission, 100) {
		t.Errorf("commission = %f, want 100", tx.Commission)
	}
	if tx.Tax != 0 {
		t.Errorf("buy tax = %f, want 0", tx.Tax)
	}
	if !almostEqual(tx.TotalAmount, 1600) {
		t.Errorf("total amount = %f, want 1600", tx.TotalAmount)
	}

	summary := e.PortfolioSummary()
	if !almostEqual(summary.CashBalance, 98400) {
		t.Errorf("cash = %f, want 98400", summary.CashBalance)
	}

	positions := e.PositionsSummary()
	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	if positions[0].Quantity != 10 || !almostEqual(positions[0].AveragePrice, 150) {
		t.Errorf("position = %+v, want qty 10 avg 150", positions[0])
	}
}

func TestExecuteSellScenario(t *testing.T) {
	// From the buy scenario, SELL 10 AAPL at 160.00:
	// net 1600, commission 100, tax 4, proceeds 1496, cash 98400+1496.
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 10)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	e.UpdateStockPrice("AAPL", 160, "")

	tx, err := e.ExecuteOrder(marketSell("AAPL", 10))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if !almostEqual(tx.Commission, 100) {
		t.Errorf("commission = %f, want 100", tx.Commission)
	}
	if !almostEqual(tx.Tax, 4) {
		t.Errorf("tax = %f, want 4", tx.Tax)
	}
	if !almostEqual(tx.TotalAmount, 1496) {
		t.Errorf("proceeds = %f, want 1496", tx.TotalAmount)
	}

	summary := e.PortfolioSummary()
	if !almostEqual(summary.CashBalance, 99896) {
		t.Errorf("cash = %f, want 99896", summary.CashBalance)
	}
	if summary.PositionsCount != 0 {
		t.Errorf("position not removed after full sell")
	}
}

func TestRejectedOrderLeavesStateUnchanged(t *testing.T) {
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 10)); err != nil {
		t.Fatalf("setup buy: %v", err)
	}

	before := e.Snapshot()

	rejections := []*models.OrderRequest{
		marketBuy("AAPL", -5),                 // invalid quantity
		marketBuy("AAPL", 1000000),            // overdraft
		marketSell("AAPL", 50),                // oversell
		marketSell("MSFT", 1),                 // no position
		marketBuy("GHOST", 1),                 // no price
		{Symbol: "AAPL", TransactionType: models.TransactionBuy, OrderType: models.OrderTypeLimit, Quantity: 5}, // limit without price
	}

	for _, order := range rejections {
		if _, err := e.ExecuteOrder(order); err == nil {
			t.Fatalf("order %+v should have been rejected", order)
		}
	}

	after := e.Snapshot()
	if !almostEqual(before.Portfolio.CashBalance, after.Portfolio.CashBalance) {
		t.Errorf("cash changed by rejected orders: %f -> %f",
			before.Portfolio.CashBalance, after.Portfolio.CashBalance)
	}
	if len(after.Portfolio.Transactions) != len(before.Portfolio.Transactions) {
		t.Errorf("transaction log changed by rejected orders")
	}
	if len(after.Portfolio.Positions) != len(before.Portfolio.Positions) {
		t.Errorf("positions changed by rejected orders")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	e := New(1000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")

	if err := e.CanExecuteOrder(marketBuy("AAPL", -1)); !errors.Is(err, errors.ErrInvalidOrder) {
		t.Errorf("negative quantity: want ErrInvalidOrder, got %v", err)
	}
	if err := e.CanExecuteOrder(marketBuy("AAPL", 100)); !errors.Is(err, errors.ErrInsufficientFunds) {
		t.Errorf("overdraft: want ErrInsufficientFunds, got %v", err)
	}
	if err := e.CanExecuteOrder(marketSell("AAPL", 1)); !errors.Is(err, errors.ErrInsufficientShares) {
		t.Errorf("no position: want ErrInsufficientShares, got %v", err)
	}
	if err := e.CanExecuteOrder(marketBuy("GHOST", 1)); !errors.Is(err, errors.ErrPriceUnavailable) {
		t.Errorf("no price: want ErrPriceUnavailable, got %v", err)
	}
}

func TestLimitOrderRequiresKnownSymbol(t *testing.T) {
	e := New(100000)

	order := &models.OrderRequest{
		Symbol:          "GHOST",
		TransactionType: models.TransactionBuy,
		OrderType:       models.OrderTypeLimit,
		Quantity:        10,
		Price:           50,
	}

	// A limit price alone is not enough: without price information for
	// the symbol the order is rejected, same as a market order.
	if err := e.CanExecuteOrder(order); !errors.Is(err, errors.ErrPriceUnavailable) {
		t.Errorf("CanExecuteOrder: want ErrPriceUnavailable, got %v", err)
	}
	if tx, err := e.ExecuteOrder(order); err == nil {
		t.Fatalf("ExecuteOrder executed without price information: %+v", tx)
	}
	if snap := e.Snapshot(); len(snap.Portfolio.Transactions) != 0 {
		t.Errorf("rejected order recorded a transaction")
	}

	// Once the symbol has price information the same order executes.
	e.UpdateStockPrice("GHOST", 55, "")
	if _, err := e.ExecuteOrder(order); err != nil {
		t.Fatalf("limit buy after price update: %v", err)
	}
}

func TestLimitOrderUsesCallerPrice(t *testing.T) {
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")

	order := &models.OrderRequest{
		Symbol:          "AAPL",
		TransactionType: models.TransactionBuy,
		OrderType:       models.OrderTypeLimit,
		Quantity:        10,
		Price:           140,
	}

	tx, err := e.ExecuteOrder(order)
	if err != nil {
		t.Fatalf("limit buy: %v", err)
	}
	// The limit price is used verbatim, not crossed against the cache.
	if !almostEqual(tx.Price, 140) {
		t.Errorf("execution price = %f, want 140", tx.Price)
	}
}

func TestPositionLifecycle(t *testing.T) {
	e := New(1000000)
	e.UpdateStockPrice("AAPL", 100, "Apple Inc.")

	if _, err := e.ExecuteOrder(marketBuy("AAPL", 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExecuteOrder(marketSell("AAPL", 10)); err != nil {
		t.Fatal(err)
	}
	if got := e.PositionsSummary(); len(got) != 0 {
		t.Fatalf("position should disappear at quantity zero, got %+v", got)
	}

	// Re-buying starts a fresh position at the new price.
	e.UpdateStockPrice("AAPL", 200, "")
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 5)); err != nil {
		t.Fatal(err)
	}
	positions := e.PositionsSummary()
	if len(positions) != 1 || !almostEqual(positions[0].AveragePrice, 200) {
		t.Errorf("fresh position = %+v, want avg 200", positions)
	}
}

func TestRecentTransactionsNewestFirst(t *testing.T) {
	e := New(1000000)
	e.UpdateStockPrice("AAPL", 100, "Apple Inc.")
	e.UpdateStockPrice("MSFT", 200, "Microsoft")

	if _, err := e.ExecuteOrder(marketBuy("AAPL", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExecuteOrder(marketBuy("MSFT", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 2)); err != nil {
		t.Fatal(err)
	}

	txs := e.RecentTransactions(2)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].Symbol != "AAPL" || txs[0].Quantity != 2 {
		t.Errorf("newest transaction = %+v", txs[0])
	}
	if txs[1].Symbol != "MSFT" {
		t.Errorf("second transaction = %+v", txs[1])
	}
}

func TestReset(t *testing.T) {
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 10)); err != nil {
		t.Fatal(err)
	}

	e.Reset(50000)

	summary := e.PortfolioSummary()
	if summary.CashBalance != 50000 || summary.InitialBalance != 50000 {
		t.Errorf("balances after reset: %+v", summary)
	}
	if summary.PositionsCount != 0 {
		t.Error("positions survived reset")
	}
	if len(e.RecentTransactions(10)) != 0 {
		t.Error("transactions survived reset")
	}

	// Price cache survives a reset.
	if _, ok := e.StockPrice("AAPL"); !ok {
		t.Error("price cache should survive reset")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := New(100000)
	e.UpdateStockPrice("AAPL", 150, "Apple Inc.")
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 10)); err != nil {
		t.Fatal(err)
	}

	snap := e.Snapshot()

	restored := New(1)
	restored.Restore(snap)

	a, b := e.PortfolioSummary(), restored.PortfolioSummary()
	if a != b {
		t.Errorf("summaries differ after restore:\n%+v\n%+v", a, b)
	}

	// The snapshot is a deep copy: mutating the original must not leak.
	if _, err := e.ExecuteOrder(marketBuy("AAPL", 1)); err != nil {
		t.Fatal(err)
	}
	if len(restored.RecentTransactions(10)) != 1 {
		t.Error("restored engine shares state with source")
	}
}
