package pricing

import "testing"

func TestFormatPriceCDFRoundsToInteger(t *testing.T) {
	if got := FormatPrice(1000, CDF); got != "1000 FC" {
		t.Fatalf("expected 1000 FC, got %q", got)
	}
	if got := FormatPrice(3.5, CDF); got != "4 FC" {
		t.Fatalf("expected 4 FC, got %q", got)
	}
	if got := Format(0); got != "0 FC" {
		t.Fatalf("expected 0 FC, got %q", got)
	}
}

func TestFormatPriceUSDUsesTwoDecimals(t *testing.T) {
	if got := FormatPrice(12.5, USD); got != "$12.50" {
		t.Fatalf("expected $12.50, got %q", got)
	}
	if got := FormatPrice(3, USD); got != "$3.00" {
		t.Fatalf("expected $3.00, got %q", got)
	}
}

func TestParseCurrencyFallsBackToDefault(t *testing.T) {
	if got := ParseCurrency(" usd "); got != USD {
		t.Fatalf("expected USD, got %q", got)
	}
	if got := ParseCurrency("EUR"); got != DefaultCurrency {
		t.Fatalf("expected default currency for EUR, got %q", got)
	}
}
