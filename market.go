package treasury

import (
	"slices"
	"strings"

	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/montecarlo"
)

// Tickers of the two assets the treasury is about.
const (
	BTC  = "BTC"
	MSTR = "MSTR"
)

// MarketData holds the daily close of every tracked ticker.
type MarketData struct {
	prices map[string]*date.History[float64]
}

// NewMarketData returns a new empty market data collection.
func NewMarketData() *MarketData {
	return &MarketData{prices: make(map[string]*date.History[float64])}
}

// normTicker makes tickers case-insensitive.
func normTicker(ticker string) string { return strings.ToUpper(strings.TrimSpace(ticker)) }

// Append records the close of ticker on a given day, replacing any previous one.
func (m *MarketData) Append(ticker string, on date.Date, price float64) {
	ticker = normTicker(ticker)
	h, ok := m.prices[ticker]
	if !ok {
		h = new(date.History[float64])
		m.prices[ticker] = h
	}
	h.Append(on, price)
}

// Has reports whether ticker has at least one price.
func (m *MarketData) Has(ticker string) bool {
	h, ok := m.prices[normTicker(ticker)]
	return ok && h.Len() > 0
}

// Tickers returns the known tickers in alphabetical order.
func (m *MarketData) Tickers() []string {
	tickers := make([]string, 0, len(m.prices))
	for t := range m.prices {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	return tickers
}

// Prices returns the price history of ticker, empty if unknown.
func (m *MarketData) Prices(ticker string) *date.History[float64] {
	if h, ok := m.prices[normTicker(ticker)]; ok {
		return h
	}
	return new(date.History[float64])
}

// PriceAsOf returns the last close of ticker on or before day.
func (m *MarketData) PriceAsOf(ticker string, day date.Date) (float64, bool) {
	return m.Prices(ticker).ValueAsOf(day)
}

// Observations pairs the closes of base and derived on the days both have
// one, within [from, to]. A zero bound is open.
func (m *MarketData) Observations(base, derived string, from, to date.Date) []montecarlo.Observation {
	b := m.Prices(base).Between(from, to)
	d := m.Prices(derived).Between(from, to)
	var obs []montecarlo.Observation
	for on := range date.Common(b, d) {
		bp, _ := b.Get(on)
		dp, _ := d.Get(on)
		obs = append(obs, montecarlo.Observation{On: on, Base: bp, Derived: dp})
	}
	return obs
}
