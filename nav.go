package treasury

import (
	"errors"
	"fmt"

	"github.com/etnz/treasury/date"
)

// ErrNoData reports that a figure needs data the book does not have.
var ErrNoData = errors.New("no data")

// NAV is the valuation of the treasury company against its bitcoin.
type NAV struct {
	On         date.Date
	TotalBTC   Quantity
	BTCPrice   Money
	SharePrice Money
	BTCNAV     Money // TotalBTC × BTCPrice

	HasStats        bool // the figures below need company stats
	Stats           CompanyStats
	BSNAV           Money // BTCNAV + cash - market value of debt
	MarketCap       Money
	BTCPerShare     Quantity
	BSNAVPerShare   Money
	NAVRatio        float64 // MarketCap / BTCNAV, the premium when above 1
	PremiumToBTCNAV Percent
	PremiumToBSNAV  Percent
	HasBSNAVPremium bool // false when the balance-sheet NAV is not positive
}

// Snapshot is the daily record of the main NAV figures.
type Snapshot struct {
	On              date.Date `json:"on"`
	TotalBTC        Quantity  `json:"total_btc"`
	BTCPrice        float64   `json:"btc_price"`
	SharePrice      float64   `json:"share_price"`
	BTCNAV          float64   `json:"btc_nav"`
	BSNAV           float64   `json:"bs_nav,omitempty"`
	MarketCap       float64   `json:"market_cap,omitempty"`
	NAVRatio        float64   `json:"nav_ratio,omitempty"`
	PremiumToBTCNAV float64   `json:"premium_to_btc_nav,omitempty"`
}

// Snapshot returns the record of n.
func (n *NAV) Snapshot() Snapshot {
	s := Snapshot{
		On:         n.On,
		TotalBTC:   n.TotalBTC,
		BTCPrice:   n.BTCPrice.Float(),
		SharePrice: n.SharePrice.Float(),
		BTCNAV:     n.BTCNAV.Float(),
	}
	if n.HasStats {
		s.BSNAV = n.BSNAV.Float()
		s.MarketCap = n.MarketCap.Float()
		s.NAVRatio = n.NAVRatio
		s.PremiumToBTCNAV = float64(n.PremiumToBTCNAV)
	}
	return s
}

// computeNAV values the holdings on a day. BTC and share prices are the
// last closes on or before that day.
func computeNAV(b *Book, on date.Date) (*NAV, error) {
	total := totalBTC(b.Tranches, on)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: no bitcoin held on %v", ErrNoData, on)
	}
	btc, ok := b.Market.PriceAsOf(b.BaseTicker, on)
	if !ok {
		return nil, fmt.Errorf("%w: no %s price on or before %v", ErrNoData, b.BaseTicker, on)
	}
	share, ok := b.Market.PriceAsOf(b.EquityTicker, on)
	if !ok {
		return nil, fmt.Errorf("%w: no %s price on or before %v", ErrNoData, b.EquityTicker, on)
	}

	n := &NAV{
		On:         on,
		TotalBTC:   total,
		BTCPrice:   USD(btc),
		SharePrice: USD(share),
	}
	n.BTCNAV = n.BTCPrice.Mul(total)

	stats, ok := b.StatsAsOf(on)
	if !ok {
		return n, nil
	}
	n.HasStats = true
	n.Stats = stats
	n.BSNAV = n.BTCNAV.Add(stats.Cash).Sub(stats.DebtMarket)
	n.MarketCap = n.SharePrice.Mul(stats.SharesOutstanding)
	n.BTCPerShare = total.Div(stats.SharesOutstanding)
	n.BSNAVPerShare = n.BSNAV.Div(stats.SharesOutstanding)
	n.NAVRatio = n.MarketCap.DivMoney(n.BTCNAV).Float()
	n.PremiumToBTCNAV = Ratio(n.NAVRatio - 1)
	if n.BSNAV.IsPositive() {
		n.PremiumToBSNAV = Ratio(n.MarketCap.DivMoney(n.BSNAV).Float() - 1)
		n.HasBSNAVPremium = true
	}
	return n, nil
}
