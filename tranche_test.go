package treasury

import (
	"encoding/json"
	"testing"
)

func TestBook_AnalyzeTranches(t *testing.T) {
	b := testBook(t)

	a, err := b.AnalyzeTranches(day("2025-01-02"))
	if err != nil {
		t.Fatalf("AnalyzeTranches() error = %v", err)
	}
	if len(a.Tranches) != 2 {
		t.Fatalf("AnalyzeTranches() returned %d tranches, want 2", len(a.Tranches))
	}

	first, second := a.Tranches[0], a.Tranches[1]
	if got, want := first.ImpliedPrice, USD(50000); !got.Equal(want) {
		t.Errorf("first tranche ImpliedPrice = %v, want %v", got, want)
	}
	if got, want := first.PnL, USD(100000); !got.Equal(want) {
		t.Errorf("first tranche PnL = %v, want %v", got, want)
	}
	if got, want := first.PnLPct, Percent(100); !got.Equal(want) {
		t.Errorf("first tranche PnLPct = %v, want %v", got, want)
	}
	if got, want := first.AgeDays, 32; got != want {
		t.Errorf("first tranche AgeDays = %v, want %v", got, want)
	}
	if got, want := second.PnL, USD(5000); !got.Equal(want) {
		t.Errorf("second tranche PnL = %v, want %v", got, want)
	}

	total := a.Total
	if !total.TotalBTC.Equal(Q(3)) || total.Count != 2 {
		t.Errorf("Total = %v BTC in %d tranches, want 3 BTC in 2", total.TotalBTC, total.Count)
	}
	if got, want := total.TotalCost, USD(195000); !got.Equal(want) {
		t.Errorf("Total.TotalCost = %v, want %v", got, want)
	}
	if got, want := total.PnL, USD(105000); !got.Equal(want) {
		t.Errorf("Total.PnL = %v, want %v", got, want)
	}
	if got, want := total.WeightedAvgCost, USD(65000); !got.Equal(want) {
		t.Errorf("Total.WeightedAvgCost = %v, want %v", got, want)
	}
	if got, want := total.PnLPct, Ratio(105000.0/195000); !got.Equal(want) {
		t.Errorf("Total.PnLPct = %v, want %v", got, want)
	}

	// Only the first tranche was held on new year's day.
	a, err = b.AnalyzeTranches(day("2025-01-01"))
	if err != nil {
		t.Fatalf("AnalyzeTranches() error = %v", err)
	}
	if a.Total.Count != 1 || !a.BTCPrice.Equal(USD(90000)) {
		t.Errorf("AnalyzeTranches(2025-01-01) = %d tranches at %v, want 1 at %v", a.Total.Count, a.BTCPrice, USD(90000))
	}
}

func TestTranche_JSON(t *testing.T) {
	var tr Tranche
	if err := json.Unmarshal([]byte(`{"on":"2024-12-01","btc":2,"usd":100000,"source":"8-K"}`), &tr); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if tr.On != day("2024-12-01") || !tr.BTC.Equal(Q(2)) || !tr.Cost.Equal(USD(100000)) || tr.Source != "8-K" {
		t.Errorf("json.Unmarshal() = %+v", tr)
	}
	if got, want := tr.ImpliedPrice(), USD(50000); !got.Equal(want) {
		t.Errorf("ImpliedPrice() = %v, want %v", got, want)
	}
}

func TestTranche_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		tranche Tranche
		wantErr bool
	}{
		{"valid", Tranche{On: day("2025-01-01"), BTC: Q(1), Cost: USD(1)}, false},
		{"free", Tranche{On: day("2025-01-01"), BTC: Q(1), Cost: USD(0)}, false},
		{"no date", Tranche{BTC: Q(1), Cost: USD(1)}, true},
		{"no btc", Tranche{On: day("2025-01-01"), Cost: USD(1)}, true},
		{"negative cost", Tranche{On: day("2025-01-01"), BTC: Q(1), Cost: USD(-1)}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tranche.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, want error: %v", err, tc.wantErr)
			}
		})
	}
}
