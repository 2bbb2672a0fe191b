package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/treasury"
	md "github.com/nao1215/markdown"
)

// PerformanceReport gathers the performance figures of one ticker.
type PerformanceReport struct {
	Ticker    string
	Returns   *treasury.ReturnsMetrics
	Drawdowns *treasury.DrawdownMetrics
	Beta      []treasury.BetaPoint // against the treasury asset, none for the asset itself
}

// PerformanceMarkdown renders the performance of one or more tickers.
func PerformanceMarkdown(reports ...PerformanceReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Performance")

	for _, r := range reports {
		doc.H2(r.Ticker)
		ret := r.Returns
		doc.PlainText(fmt.Sprintf("From %s to %s (%d daily returns).", ret.From, ret.To, ret.Days))
		rows := [][]string{
			{"Cumulative return", ratio(ret.Cumulative)},
			{"Annualized return", ratio(ret.Annualized)},
			{"Annualized volatility", share(ret.Volatility)},
			{"Sharpe ratio", fmt.Sprintf("%.2f", ret.Sharpe)},
		}
		if d := r.Drawdowns; d != nil {
			rows = append(rows,
				[]string{"Max drawdown", ratio(d.Max.Depth)},
				[]string{"Current drawdown", ratio(d.Current)},
			)
		}
		if n := len(r.Beta); n > 0 {
			rows = append(rows, []string{fmt.Sprintf("Beta on %s", r.Beta[n-1].On), fmt.Sprintf("%.3f", r.Beta[n-1].Beta)})
		}
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Metric", "Value"},
			Rows:      rows,
		})

		if r.Drawdowns == nil || len(r.Drawdowns.Top) == 0 {
			continue
		}
		table := md.TableSet{Header: []string{"Peak", "Trough", "Depth", "Days", "Recovered"}}
		for _, dd := range r.Drawdowns.Top {
			recovered := "not yet"
			if !dd.Recovered.IsZero() {
				recovered = dd.Recovered.String()
			}
			table.Rows = append(table.Rows, []string{
				dd.Peak.String(), dd.Trough.String(), ratio(dd.Depth), fmt.Sprint(dd.Duration()), recovered,
			})
		}
		doc.Table(table)
	}
	return doc.String()
}
