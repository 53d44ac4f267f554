package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func testOutput(buf *bytes.Buffer, jsonMode, color bool) *Output {
	return &Output{writer: buf, jsonMode: jsonMode, colorEnabled: color}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, true, false)

	if !output.IsJSON() {
		t.Fatal("IsJSON() = false, want true")
	}
	if err := output.JSON(map[string]int{"count": 3}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["count"] != 3 {
		t.Errorf("count = %d, want 3", decoded["count"])
	}
}

func TestColoredOutputDisabledWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, false, false)

	output.Success("done")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("plain output contains ANSI codes: %q", buf.String())
	}
	if strings.TrimSpace(buf.String()) != "done" {
		t.Errorf("output = %q, want %q", buf.String(), "done\n")
	}
}

func TestFormatPnLColors(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, false, true)

	if got := output.FormatPnL(10); !strings.Contains(got, ColorGreen) {
		t.Errorf("positive P&L not green: %q", got)
	}
	if got := output.FormatPnL(-10); !strings.Contains(got, ColorRed) {
		t.Errorf("negative P&L not red: %q", got)
	}
	if got := output.FormatPnL(0); !strings.Contains(got, ColorWhite) {
		t.Errorf("flat P&L not white: %q", got)
	}
}

func TestTableRenderAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, false, false)

	table := NewTable(output, "SYMBOL", "QTY")
	table.AddRow("AAPL", "10")
	table.AddRow("GOOGL", "5")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (header, separator, 2 rows)", len(lines))
	}

	// Every QTY cell starts at the same column.
	headerIdx := strings.Index(lines[0], "QTY")
	if headerIdx < 0 {
		t.Fatalf("header missing QTY: %q", lines[0])
	}
	if idx := strings.Index(lines[2], "10"); idx != headerIdx {
		t.Errorf("row 1 QTY at column %d, want %d", idx, headerIdx)
	}
	if idx := strings.Index(lines[3], "5"); idx != headerIdx {
		t.Errorf("row 2 QTY at column %d, want %d", idx, headerIdx)
	}
}

func TestStripANSI(t *testing.T) {
	colored := ColorBold + "AAPL" + ColorReset
	if got := stripANSI(colored); got != "AAPL" {
		t.Errorf("stripANSI(%q) = %q, want %q", colored, got, "AAPL")
	}
}
