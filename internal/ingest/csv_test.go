package ingest

import (
	"math"
	"testing"
	"time"

	"portfolio-sentinel/internal/models"
)

const sampleCSV = `"Positions for account Individual ...789 as of 09:12 PM ET, 2026/08/27","","","","","","",""
"Symbol","Description","Qty (Quantity)","Price","Mkt Val (Market Value)","Gain % (Gain/Loss %)","Security Type","Delta"
"NVDA","NVIDIA CORP","200","=""$186.23""","=""$37,246.00""","25.4%","Equity",""
"VTI","VANGUARD TOTAL STOCK MKT ETF","50","=""$290.10""","=""$14,505.00""","8.1%","ETFs & Closed End Funds",""
"NVDA 01/23/2026 200.00 C","CALL NVIDIA CORP","-2","=""$4.10""","-$820.00","12.3%","Option","0.35"
"AAPL 03/20/2026 180.00 P","PUT APPLE INC","-1","=""$6.55""","-$655.00","-4.2%","Option","-0.28"
"Cash & Cash Investments","","","","=""$5,000.00""","","Cash and Money Market",""
"Account Total","","","","=""$55,276.00""","","",""
`

func TestParsePortfolio(t *testing.T) {
	positions, rowErrs, err := ParsePortfolio(sampleCSV)
	if err != nil {
		t.Fatalf("ParsePortfolio: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("expected no row errors, got %d: %v", len(rowErrs), rowErrs)
	}
	if len(positions) != 5 {
		t.Fatalf("expected 5 positions, got %d", len(positions))
	}

	nvda := positions[0]
	if nvda.Type != models.SecurityEquity || nvda.Quantity != 200 {
		t.Errorf("NVDA parsed wrong: %+v", nvda)
	}
	if math.Abs(nvda.Price-186.23) > 1e-9 {
		t.Errorf("NVDA price = %v, want 186.23", nvda.Price)
	}
	if math.Abs(nvda.MarketValue-37246.00) > 1e-9 {
		t.Errorf("NVDA market value = %v, want 37246.00", nvda.MarketValue)
	}
	if math.Abs(nvda.GainPercent-25.4) > 1e-9 {
		t.Errorf("NVDA gain = %v, want 25.4", nvda.GainPercent)
	}

	call := positions[2]
	if call.Type != models.SecurityOption {
		t.Fatalf("expected option, got %s", call.Type)
	}
	if call.Underlying != "NVDA" || call.OptionType != models.OptionCall {
		t.Errorf("call option parsed wrong: %+v", call)
	}
	if call.Strike != 200.00 {
		t.Errorf("call strike = %v, want 200", call.Strike)
	}
	wantExp := time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC)
	if !call.Expiration.Equal(wantExp) {
		t.Errorf("call expiration = %v, want %v", call.Expiration, wantExp)
	}
	if call.Delta != 0.35 || call.Quantity != -2 {
		t.Errorf("call delta/qty = %v/%v", call.Delta, call.Quantity)
	}

	put := positions[3]
	if put.OptionType != models.OptionPut || put.Delta != -0.28 {
		t.Errorf("put parsed wrong: %+v", put)
	}

	cash := positions[4]
	if cash.Type != models.SecurityCash {
		t.Fatalf("expected cash position, got %s", cash.Type)
	}
	if math.Abs(cash.MarketValue-5000.00) > 1e-9 {
		t.Errorf("cash = %v, want 5000", cash.MarketValue)
	}
}

func TestParsePortfolioMalformedOptionRow(t *testing.T) {
	csvText := `"Symbol","Qty (Quantity)","Price","Mkt Val (Market Value)","Gain % (Gain/Loss %)","Security Type","Delta"
"NVDA","200","$186.23","$37,246.00","25.4%","Equity",""
"NVDA 01/23/2026 200.00 C","-2","$4.10","-$820.00","12.3%","Option","N/A"
"AAPL","10","$225.00","$2,250.00","1.0%","Equity",""
`
	positions, rowErrs, err := ParsePortfolio(csvText)
	if err != nil {
		t.Fatalf("ParsePortfolio: %v", err)
	}
	if len(positions) != 2 {
		t.Errorf("expected 2 positions, got %d", len(positions))
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(rowErrs))
	}
	if rowErrs[0].Field != "Delta" {
		t.Errorf("row error field = %q, want Delta", rowErrs[0].Field)
	}
}

func TestParsePortfolioNoHeader(t *testing.T) {
	if _, _, err := ParsePortfolio("no,header,here\n1,2,3\n"); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`="$186.23"`, 186.23},
		{`=""$1,234.56""`, 1234.56},
		{"$5,000.00", 5000},
		{"-$820.00", -820},
		{"--", 0},
		{"N/A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := CleanCurrency(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CleanCurrency(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCleanPercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25.4%", 25.4},
		{"-12.5%", -12.5},
		{`="8.1%"`, 8.1},
		{"--", 0},
	}
	for _, tt := range tests {
		if got := CleanPercent(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CleanPercent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCleanDelta(t *testing.T) {
	if v, ok := CleanDelta("-0.28"); !ok || v != -0.28 {
		t.Errorf("CleanDelta(-0.28) = %v, %v", v, ok)
	}
	for _, in := range []string{"N/A", "--", ""} {
		if _, ok := CleanDelta(in); ok {
			t.Errorf("CleanDelta(%q) should not be usable", in)
		}
	}
}

func TestParseOptionSymbol(t *testing.T) {
	opt, err := ParseOptionSymbol("NVDA 01/23/2026 200.00 C")
	if err != nil {
		t.Fatalf("ParseOptionSymbol: %v", err)
	}
	if opt.Underlying != "NVDA" || opt.Strike != 200 || opt.Type != models.OptionCall {
		t.Errorf("parsed = %+v", opt)
	}

	for _, bad := range []string{"NVDA", "NVDA 2026-01-23 200.00 C", "NVDA 01/23/2026 200.00 X", "NVDA 01/23/2026 abc C"} {
		if _, err := ParseOptionSymbol(bad); err == nil {
			t.Errorf("ParseOptionSymbol(%q) should fail", bad)
		}
	}
}
