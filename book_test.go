package treasury

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/treasury/date"
	"github.com/google/go-cmp/cmp"
)

func TestBook_PositionMetrics(t *testing.T) {
	b := testBook(t)

	m, err := b.PositionMetrics("", day("2025-01-02"))
	if err != nil {
		t.Fatalf("PositionMetrics() error = %v", err)
	}
	if m.Position.Label != "core" {
		t.Errorf("PositionMetrics() label = %q, want the active position %q", m.Position.Label, "core")
	}
	for _, tc := range []struct {
		name      string
		got, want Money
	}{
		{"Value", m.Value, USD(40000)},
		{"CostBasis", m.CostBasis, USD(35000)},
		{"PnL", m.PnL, USD(5000)},
	} {
		if !tc.got.Equal(tc.want) {
			t.Errorf("PositionMetrics().%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if !m.PnLPct.Equal(Ratio(5000.0 / 35000)) {
		t.Errorf("PositionMetrics().PnLPct = %v, want 14.29%%", m.PnLPct)
	}
	if !m.HasExposure || !m.BTCExposure.Equal(Q(0.3)) {
		t.Errorf("PositionMetrics().BTCExposure = %v (%v), want 0.3", m.BTCExposure, m.HasExposure)
	}

	if _, err := b.PositionMetrics("nope", day("2025-01-02")); !errors.Is(err, ErrNoData) {
		t.Errorf("PositionMetrics(nope) error = %v, want %v", err, ErrNoData)
	}
}

func TestBook_SetPosition(t *testing.T) {
	b := testBook(t)
	if err := b.SetPosition(Position{Label: "trading", Shares: Q(10), AvgEntryPrice: Q(420), Active: true}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if err := b.SetPosition(Position{Label: "CORE", Shares: Q(200), AvgEntryPrice: Q(300)}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	active, err := b.Position("")
	if err != nil || active.Label != "trading" {
		t.Errorf("Position(\"\") = %q, %v, want %q", active.Label, err, "trading")
	}
	core, err := b.Position("core")
	if err != nil || !core.Shares.Equal(Q(200)) || core.Active {
		t.Errorf("Position(core) = %+v, %v, want 200 inactive shares", core, err)
	}
	if got, want := len(b.Positions), 2; got != want {
		t.Errorf("len(Positions) = %d, want %d", got, want)
	}
	if err := b.SetPosition(Position{Label: "empty"}); err == nil {
		t.Errorf("SetPosition() without shares succeeded")
	}
}

func TestBook_AddStats(t *testing.T) {
	b := testBook(t)
	if err := b.AddStats(CompanyStats{On: day("2025-01-01"), SharesOutstanding: Q(2000), Cash: USD(0), DebtFace: USD(0), DebtMarket: USD(0)}); err != nil {
		t.Fatalf("AddStats() error = %v", err)
	}
	if len(b.Stats) != 1 {
		t.Fatalf("AddStats() on the same day kept %d stats, want 1", len(b.Stats))
	}
	s, ok := b.StatsAsOf(day("2025-03-01"))
	if !ok || !s.SharesOutstanding.Equal(Q(2000)) {
		t.Errorf("StatsAsOf() = %v, %v, want 2000 shares", s.SharesOutstanding, ok)
	}
	if _, ok := b.StatsAsOf(day("2024-12-31")); ok {
		t.Errorf("StatsAsOf(2024-12-31) found stats before the first report")
	}
}

func TestEncodeBook(t *testing.T) {
	folder := t.TempDir()
	want := testBook(t)
	if err := EncodeBook(folder, want); err != nil {
		t.Fatalf("EncodeBook() error = %v", err)
	}
	got, err := DecodeBook(folder)
	if err != nil {
		t.Fatalf("DecodeBook() error = %v", err)
	}

	// Both books must value the same.
	for _, on := range []string{"2025-01-01", "2025-01-02"} {
		w, err := want.ComputeNAV(day(on))
		if err != nil {
			t.Fatal(err)
		}
		g, err := got.ComputeNAV(day(on))
		if err != nil {
			t.Fatalf("ComputeNAV(%s) on decoded book error = %v", on, err)
		}
		if diff := cmp.Diff(w.Snapshot(), g.Snapshot(), cmp.AllowUnexported(date.Date{})); diff != "" {
			t.Errorf("decoded book NAV on %s mismatch (-want +got):\n%s", on, diff)
		}
	}
	if diff := cmp.Diff(want.Positions, got.Positions); diff != "" {
		t.Errorf("decoded positions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBook_Empty(t *testing.T) {
	b, err := DecodeBook(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("DecodeBook() on a missing folder error = %v", err)
	}
	if len(b.Tranches) != 0 || len(b.Market.Tickers()) != 0 {
		t.Errorf("DecodeBook() on a missing folder is not empty")
	}
}

func TestDecodeBook_UnknownField(t *testing.T) {
	folder := t.TempDir()
	if err := os.WriteFile(filepath.Join(folder, PositionsFile), []byte(`{"label":"x","shares":1,"avg_entry_price":1,"bogus":true}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeBook(folder); err == nil {
		t.Errorf("DecodeBook() accepted an unknown position field")
	}
}

func TestSnapshots(t *testing.T) {
	folder := t.TempDir()
	b := testBook(t)
	for _, on := range []string{"2025-01-01", "2025-01-02"} {
		n, err := b.ComputeNAV(day(on))
		if err != nil {
			t.Fatal(err)
		}
		if err := AppendSnapshot(folder, n.Snapshot()); err != nil {
			t.Fatalf("AppendSnapshot() error = %v", err)
		}
	}
	got, err := DecodeSnapshots(folder)
	if err != nil {
		t.Fatalf("DecodeSnapshots() error = %v", err)
	}
	if len(got) != 2 || got[1].On != day("2025-01-02") || got[1].BTCNAV != 300000 {
		t.Errorf("DecodeSnapshots() = %+v, want 2 snapshots ending with 300k of BTC on 2025-01-02", got)
	}
}
