package treasury

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/montecarlo"
)

// Book gathers everything known about the treasury: prices, BTC tranches,
// company balance sheets and personal positions.
type Book struct {
	BaseTicker   string // the asset held in treasury, BTC by default
	EquityTicker string // the company's shares, MSTR by default

	Market    *MarketData
	Tranches  []Tranche      // sorted by date
	Stats     []CompanyStats // sorted by date
	Positions []Position
}

// NewBook returns an empty book tracking BTC and MSTR.
func NewBook() *Book {
	return &Book{BaseTicker: BTC, EquityTicker: MSTR, Market: NewMarketData()}
}

// AddTranche records a tranche.
func (b *Book) AddTranche(t Tranche) error {
	if err := t.Validate(); err != nil {
		return err
	}
	b.Tranches = append(b.Tranches, t)
	sortTranches(b.Tranches)
	return nil
}

// AddStats records the company stats of a day, replacing any for that day.
func (b *Book) AddStats(s CompanyStats) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.Stats = slices.DeleteFunc(b.Stats, func(x CompanyStats) bool { return x.On == s.On })
	b.Stats = append(b.Stats, s)
	slices.SortFunc(b.Stats, func(x, y CompanyStats) int { return x.On.Time().Compare(y.On.Time()) })
	return nil
}

// StatsAsOf returns the latest company stats on or before on.
func (b *Book) StatsAsOf(on date.Date) (CompanyStats, bool) {
	for i := len(b.Stats) - 1; i >= 0; i-- {
		if !b.Stats[i].On.After(on) {
			return b.Stats[i], true
		}
	}
	return CompanyStats{}, false
}

// SetPosition adds or replaces the position with the same label. Making a
// position active deactivates the others.
func (b *Book) SetPosition(p Position) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Active {
		for i := range b.Positions {
			b.Positions[i].Active = false
		}
	}
	if i := slices.IndexFunc(b.Positions, func(x Position) bool { return strings.EqualFold(x.Label, p.Label) }); i >= 0 {
		b.Positions[i] = p
		return nil
	}
	b.Positions = append(b.Positions, p)
	return nil
}

// Position returns the position called label, or the active one when label is empty.
func (b *Book) Position(label string) (Position, error) {
	for _, p := range b.Positions {
		if (label == "" && p.Active) || (label != "" && strings.EqualFold(p.Label, label)) {
			return p, nil
		}
	}
	if label == "" {
		return Position{}, fmt.Errorf("%w: no active position", ErrNoData)
	}
	return Position{}, fmt.Errorf("%w: no position %q", ErrNoData, label)
}

// TotalBTC returns the bitcoin held on a day.
func (b *Book) TotalBTC(on date.Date) Quantity { return totalBTC(b.Tranches, on) }

// ComputeNAV values the company against its bitcoin on a day.
func (b *Book) ComputeNAV(on date.Date) (*NAV, error) { return computeNAV(b, on) }

// AnalyzeTranches values every tranche acquired up to a day.
func (b *Book) AnalyzeTranches(on date.Date) (*TrancheAnalysis, error) {
	if totalBTC(b.Tranches, on).IsZero() {
		return nil, fmt.Errorf("%w: no tranche on or before %v", ErrNoData, on)
	}
	price, ok := b.Market.PriceAsOf(b.BaseTicker, on)
	if !ok {
		return nil, fmt.Errorf("%w: no %s price on or before %v", ErrNoData, b.BaseTicker, on)
	}
	return analyzeTranches(b.Tranches, on, USD(price)), nil
}

// PositionMetrics values the position called label (the active one when
// empty) on a day.
func (b *Book) PositionMetrics(label string, on date.Date) (*PositionMetrics, error) {
	p, err := b.Position(label)
	if err != nil {
		return nil, err
	}
	nav, err := b.ComputeNAV(on)
	if err != nil {
		return nil, err
	}
	return positionMetrics(p, nav), nil
}

// Observations returns the paired daily closes of the base asset and the
// equity within [from, to], ready for calibration.
func (b *Book) Observations(from, to date.Date) []montecarlo.Observation {
	return b.Market.Observations(b.BaseTicker, b.EquityTicker, from, to)
}

// DecodeBook reads a treasury data folder. Missing files are empty.
func DecodeBook(folder string) (*Book, error) {
	b := NewBook()
	var err error
	if b.Market, err = DecodeMarketData(filepath.Join(folder, PricesDir)); err != nil {
		return nil, err
	}
	tranches, err := decodeJSONLFile[Tranche](filepath.Join(folder, TranchesFile))
	if err != nil {
		return nil, err
	}
	for _, t := range tranches {
		if err := b.AddTranche(t); err != nil {
			return nil, fmt.Errorf("load error %s: %w", TranchesFile, err)
		}
	}
	stats, err := decodeJSONLFile[CompanyStats](filepath.Join(folder, CompanyFile))
	if err != nil {
		return nil, err
	}
	for _, s := range stats {
		if err := b.AddStats(s); err != nil {
			return nil, fmt.Errorf("load error %s: %w", CompanyFile, err)
		}
	}
	if b.Positions, err = decodeJSONLFile[Position](filepath.Join(folder, PositionsFile)); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeBook writes b into a treasury data folder.
func EncodeBook(folder string, b *Book) error {
	if err := EncodeMarketData(filepath.Join(folder, PricesDir), b.Market); err != nil {
		return err
	}
	if err := writeJSONLFile(filepath.Join(folder, TranchesFile), b.Tranches); err != nil {
		return err
	}
	if err := writeJSONLFile(filepath.Join(folder, CompanyFile), b.Stats); err != nil {
		return err
	}
	return writeJSONLFile(filepath.Join(folder, PositionsFile), b.Positions)
}

// AppendSnapshot appends s to the snapshots file of folder.
func AppendSnapshot(folder string, s Snapshot) error {
	return appendJSONLFile(filepath.Join(folder, SnapshotsFile), s)
}

// DecodeSnapshots reads the snapshots file of folder.
func DecodeSnapshots(folder string) ([]Snapshot, error) {
	return decodeJSONLFile[Snapshot](filepath.Join(folder, SnapshotsFile))
}
