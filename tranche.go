package treasury

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/etnz/treasury/date"
)

// Tranche is one BTC acquisition with its own cost basis.
type Tranche struct {
	On     date.Date
	BTC    Quantity
	Cost   Money // total USD spent
	Source string
	Notes  string
}

// ImpliedPrice is the average USD price paid per BTC in this tranche.
func (t Tranche) ImpliedPrice() Money {
	if t.BTC.IsZero() {
		return USD(0)
	}
	return t.Cost.Div(t.BTC)
}

// jtranche is the persisted form of a Tranche.
type jtranche struct {
	On     date.Date `json:"on"`
	BTC    Quantity  `json:"btc"`
	USD    Quantity  `json:"usd"`
	Source string    `json:"source,omitempty"`
	Notes  string    `json:"notes,omitempty"`
}

func (t Tranche) MarshalJSON() ([]byte, error) {
	return json.Marshal(jtranche{On: t.On, BTC: t.BTC, USD: Quantity{t.Cost.value}, Source: t.Source, Notes: t.Notes})
}

func (t *Tranche) UnmarshalJSON(b []byte) error {
	var j jtranche
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*t = Tranche{On: j.On, BTC: j.BTC, Cost: USD(j.USD.value), Source: j.Source, Notes: j.Notes}
	return nil
}

// Validate checks t is a real acquisition.
func (t Tranche) Validate() error {
	if t.On.IsZero() {
		return fmt.Errorf("tranche has no date")
	}
	if !t.BTC.IsPositive() {
		return fmt.Errorf("tranche on %v: btc must be positive, got %v", t.On, t.BTC)
	}
	if t.Cost.IsNegative() {
		return fmt.Errorf("tranche on %v: usd spent must not be negative, got %v", t.On, t.Cost)
	}
	return nil
}

// TrancheSummary is the valuation of a tranche at a BTC price.
type TrancheSummary struct {
	Tranche      Tranche
	ImpliedPrice Money
	BTCPrice     Money
	Value        Money
	PnL          Money
	PnLPct       Percent
	AgeDays      int
}

// HoldingsSummary aggregates every tranche held on a day.
type HoldingsSummary struct {
	TotalBTC        Quantity
	TotalCost       Money
	Value           Money
	PnL             Money
	PnLPct          Percent
	WeightedAvgCost Money
	Count           int
}

// TrancheAnalysis is the valuation of every tranche acquired up to a day.
type TrancheAnalysis struct {
	On       date.Date
	BTCPrice Money
	Tranches []TrancheSummary
	Total    HoldingsSummary
}

// analyzeTranches values the tranches acquired on or before on at btcPrice.
// tranches must be sorted.
func analyzeTranches(tranches []Tranche, on date.Date, btcPrice Money) *TrancheAnalysis {
	a := &TrancheAnalysis{On: on, BTCPrice: btcPrice}
	total := HoldingsSummary{TotalCost: USD(0), Value: USD(0)}
	for _, t := range tranches {
		if t.On.After(on) {
			break
		}
		value := btcPrice.Mul(t.BTC)
		pnl := value.Sub(t.Cost)
		a.Tranches = append(a.Tranches, TrancheSummary{
			Tranche:      t,
			ImpliedPrice: t.ImpliedPrice(),
			BTCPrice:     btcPrice,
			Value:        value,
			PnL:          pnl,
			PnLPct:       pct(pnl, t.Cost),
			AgeDays:      on.Sub(t.On),
		})
		total.TotalBTC = total.TotalBTC.Add(t.BTC)
		total.TotalCost = total.TotalCost.Add(t.Cost)
		total.Value = total.Value.Add(value)
		total.Count++
	}
	total.PnL = total.Value.Sub(total.TotalCost)
	total.PnLPct = pct(total.PnL, total.TotalCost)
	total.WeightedAvgCost = USD(0)
	if total.TotalBTC.IsPositive() {
		total.WeightedAvgCost = total.TotalCost.Div(total.TotalBTC)
	}
	a.Total = total
	return a
}

// totalBTC sums the tranches acquired on or before on.
func totalBTC(tranches []Tranche, on date.Date) Quantity {
	var total Quantity
	for _, t := range tranches {
		if t.On.After(on) {
			break
		}
		total = total.Add(t.BTC)
	}
	return total
}

// pct returns part/whole in percent, 0 when whole is not positive.
func pct(part, whole Money) Percent {
	if !whole.IsPositive() {
		return 0
	}
	return Ratio(part.DivMoney(whole).Float())
}

func sortTranches(tranches []Tranche) {
	slices.SortStableFunc(tranches, func(a, b Tranche) int { return a.On.Time().Compare(b.On.Time()) })
}
