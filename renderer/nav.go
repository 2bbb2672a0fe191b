package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/treasury"
	md "github.com/nao1215/markdown"
)

// NAVMarkdown renders the company valuation against its bitcoin.
func NAVMarkdown(n *treasury.NAV, base, equity string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s NAV on %s", equity, n.On))
	rows := [][]string{
		{base + " held", n.TotalBTC.String()},
		{base + " price", n.BTCPrice.String()},
		{equity + " price", n.SharePrice.String()},
		{base + " NAV", n.BTCNAV.String()},
	}
	if n.HasStats {
		premium := "-"
		if n.HasBSNAVPremium {
			premium = n.PremiumToBSNAV.SignedString()
		}
		rows = append(rows,
			[]string{"Shares outstanding", n.Stats.SharesOutstanding.String()},
			[]string{"Cash", n.Stats.Cash.String()},
			[]string{"Debt (market)", n.Stats.DebtMarket.String()},
			[]string{"Balance-sheet NAV", n.BSNAV.String()},
			[]string{"Market cap", n.MarketCap.String()},
			[]string{base + " per share", n.BTCPerShare.Fixed(8)},
			[]string{"Balance-sheet NAV per share", n.BSNAVPerShare.String()},
			[]string{"mNAV", fmt.Sprintf("%.3f", n.NAVRatio)},
			[]string{"Premium to " + base + " NAV", n.PremiumToBTCNAV.SignedString()},
			[]string{"Premium to balance-sheet NAV", premium},
		)
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows:      rows,
	})
	if !n.HasStats {
		doc.PlainText("No company stats on or before this day: premiums are unknown.")
	}
	return doc.String()
}
