package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/montecarlo"
	md "github.com/nao1215/markdown"
)

// SimulationMarkdown renders the outcome of a simulation.
func SimulationMarkdown(r *treasury.SimulationResult, base, derived string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	req := r.Request
	p := r.Scenario.Params

	doc.H1(fmt.Sprintf("Simulation %q on %s", r.Scenario.Name, r.On))
	doc.PlainText(fmt.Sprintf("%d paths over %d trading days, seed %d, run %s.", req.NumPaths, req.HorizonDays, req.Seed, r.RunID))

	doc.H2("Parameters")
	doc.Table(md.TableSet{
		Header: []string{"Parameter", "Value"},
		Rows: [][]string{
			{base + " drift", ratio(p.AnnualDrift)},
			{base + " volatility", share(p.AnnualVolatility)},
			{"Beta", fmt.Sprintf("%.3f", p.Beta)},
			{"Alpha", ratio(p.Alpha)},
			{derived + " idiosyncratic volatility", share(p.IdioVolatility)},
		},
	})
	if c := r.Calibration; c != nil {
		doc.PlainText(fmt.Sprintf("Beta, alpha and idiosyncratic volatility calibrated on %d daily returns from %s to %s (R² %.3f).",
			c.Returns, c.From, c.To, c.RSquared))
	}

	doc.H2("Outcome")
	doc.Table(md.TableSet{
		Header: []string{"", base, derived},
		Rows: [][]string{
			{"Start", usd(r.Base.Start), usd(r.Derived.Start)},
			{"Mean return", ratio(r.Base.MeanReturn), ratio(r.Derived.MeanReturn)},
			{"Median return", ratio(r.Base.MedianReturn), ratio(r.Derived.MedianReturn)},
			{"Return std", share(r.Base.StdReturn), share(r.Derived.StdReturn)},
			{"Probability of loss", share(r.Base.ProbLoss), share(r.Derived.ProbLoss)},
		},
	})

	doc.H2("Terminal Prices")
	prices := md.TableSet{Header: []string{"Percentile", base, derived}}
	for _, c := range r.Derived.Levels() {
		prices.Rows = append(prices.Rows, []string{
			percentile(c),
			usd(r.Base.Percentiles[c]),
			usd(r.Derived.Percentiles[c]),
		})
	}
	doc.Table(prices)

	risk := md.TableSet{Header: []string{"Confidence", base + " VaR", base + " CVaR", derived + " VaR", derived + " CVaR"}}
	for _, c := range riskLevels(r.Derived) {
		risk.Rows = append(risk.Rows, []string{
			share(float64(c)),
			share(r.Base.VaRRatio(c)),
			share(r.Base.CVaRRatio(c)),
			share(r.Derived.VaRRatio(c)),
			share(r.Derived.CVaRRatio(c)),
		})
	}
	if len(risk.Rows) > 0 {
		doc.H2("Value at Risk")
		doc.PlainText("Losses as a share of the start price.")
		doc.Table(risk)
	}

	if pos := r.Position; pos != nil {
		positionRisk(doc, pos, r.PositionLabel)
	}
	return doc.String()
}

// riskLevels returns the levels of m at which a loss measure makes sense.
func riskLevels(m *montecarlo.Metrics) []montecarlo.Level {
	var levels []montecarlo.Level
	for _, c := range m.Levels() {
		if c >= 0.5 {
			levels = append(levels, c)
		}
	}
	return levels
}

func positionRisk(doc *md.Markdown, pos *montecarlo.PositionRisk, label string) {
	title := "Position"
	if label != "" {
		title = fmt.Sprintf("Position %q", label)
	}
	doc.H2(title)
	doc.PlainText(fmt.Sprintf("%s shares at %s, cost basis %s, expected P&L %s.",
		strconv.FormatFloat(pos.Shares, 'f', -1, 64),
		usd(pos.AvgEntryPrice), usd(pos.CostBasis), treasury.USD(pos.MeanPnL).SignedString()))

	t := md.TableSet{Header: []string{"Confidence", "VaR", "CVaR"}}
	for _, c := range riskLevels(pos.Value) {
		t.Rows = append(t.Rows, []string{share(float64(c)), usd(pos.Value.VaR[c]), usd(pos.Value.CVaR[c])})
	}
	if len(t.Rows) > 0 {
		doc.Table(t)
	}

	pnl := md.TableSet{Header: []string{"Percentile", "Value", "P&L"}}
	for _, c := range pos.Value.Levels() {
		pnl.Rows = append(pnl.Rows, []string{percentile(c), usd(pos.Value.Percentiles[c]), treasury.USD(pos.PnLPercentiles[c]).SignedString()})
	}
	doc.Table(pnl)
	doc.PlainText(fmt.Sprintf("Probability of a loss: %s.", share(pos.Value.ProbLoss)))
}
