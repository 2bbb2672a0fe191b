package treasury

import (
	"fmt"

	"github.com/etnz/treasury/date"
)

// Position is a personal holding of the treasury company's shares.
type Position struct {
	Label         string   `json:"label"`
	Shares        Quantity `json:"shares"`
	AvgEntryPrice Quantity `json:"avg_entry_price"` // USD per share
	Active        bool     `json:"active"`
}

// Validate checks p can be valued.
func (p Position) Validate() error {
	if p.Label == "" {
		return fmt.Errorf("position has no label")
	}
	if !p.Shares.IsPositive() {
		return fmt.Errorf("position %q: shares must be positive, got %v", p.Label, p.Shares)
	}
	if !p.AvgEntryPrice.IsPositive() {
		return fmt.Errorf("position %q: average entry price must be positive, got %v", p.Label, p.AvgEntryPrice)
	}
	return nil
}

// PositionMetrics is the valuation of a position on a day.
type PositionMetrics struct {
	Position    Position
	On          date.Date
	SharePrice  Money
	Value       Money
	CostBasis   Money
	PnL         Money
	PnLPct      Percent
	BTCPerShare Quantity
	BTCExposure Quantity // shares × BTC per share
	HasExposure bool     // false when shares outstanding are unknown
}

func positionMetrics(p Position, nav *NAV) *PositionMetrics {
	m := &PositionMetrics{
		Position:   p,
		On:         nav.On,
		SharePrice: nav.SharePrice,
		Value:      nav.SharePrice.Mul(p.Shares),
		CostBasis:  USD(p.AvgEntryPrice.value).Mul(p.Shares),
	}
	m.PnL = m.Value.Sub(m.CostBasis)
	m.PnLPct = pct(m.PnL, m.CostBasis)
	if nav.HasStats {
		m.BTCPerShare = nav.BTCPerShare
		m.BTCExposure = p.Shares.Mul(nav.BTCPerShare)
		m.HasExposure = true
	}
	return m
}
