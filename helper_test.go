package treasury

import (
	"testing"

	"github.com/etnz/treasury/date"
)

// day is a helper for test to create dates from const
func day(s string) date.Date { return date.MustParse(s) }

// testBook returns a small book:
//
//   - BTC at 90k then 100k, MSTR at 300 then 400 on 2025-01-01 and 2025-01-02.
//   - 2 BTC bought for 100k on 2024-12-01, 1 BTC for 95k on 2025-01-02.
//   - 1000 shares, 10k cash and 50k debt (60k at market) on 2025-01-01.
//   - 100 shares bought at 350 in the active position "core".
func testBook(t *testing.T) *Book {
	t.Helper()
	b := NewBook()
	b.Market.Append(BTC, day("2025-01-01"), 90000)
	b.Market.Append(BTC, day("2025-01-02"), 100000)
	b.Market.Append(MSTR, day("2025-01-01"), 300)
	b.Market.Append(MSTR, day("2025-01-02"), 400)

	for _, tr := range []Tranche{
		{On: day("2025-01-02"), BTC: Q(1), Cost: USD(95000), Source: "8-K"},
		{On: day("2024-12-01"), BTC: Q(2), Cost: USD(100000)},
	} {
		if err := b.AddTranche(tr); err != nil {
			t.Fatalf("AddTranche() error = %v", err)
		}
	}
	if err := b.AddStats(CompanyStats{
		On:                day("2025-01-01"),
		SharesOutstanding: Q(1000),
		Cash:              USD(10000),
		DebtFace:          USD(50000),
		DebtMarket:        USD(60000),
	}); err != nil {
		t.Fatalf("AddStats() error = %v", err)
	}
	if err := b.SetPosition(Position{Label: "core", Shares: Q(100), AvgEntryPrice: Q(350), Active: true}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	return b
}
