package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/treasury"
	md "github.com/nao1215/markdown"
)

// PositionMarkdown renders the valuation of a position.
func PositionMarkdown(m *treasury.PositionMetrics, base, equity string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Position %q on %s", m.Position.Label, m.On))
	rows := [][]string{
		{"Shares", m.Position.Shares.String()},
		{"Average entry price", treasury.USD(m.Position.AvgEntryPrice.Float()).String()},
		{equity + " price", m.SharePrice.String()},
		{"Cost basis", m.CostBasis.String()},
		{"Value", m.Value.String()},
		{"P&L", m.PnL.SignedString()},
		{"P&L %", m.PnLPct.SignedString()},
	}
	if m.HasExposure {
		rows = append(rows,
			[]string{base + " per share", m.BTCPerShare.Fixed(8)},
			[]string{base + " exposure", m.BTCExposure.Fixed(8)},
		)
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows:      rows,
	})
	return doc.String()
}
