package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/treasury"
	md "github.com/nao1215/markdown"
)

// TranchesMarkdown renders every tranche valued at the day's price.
func TranchesMarkdown(a *treasury.TrancheAnalysis, base string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s Tranches on %s", base, a.On))
	doc.PlainText(fmt.Sprintf("Valued at %s per %s.", a.BTCPrice, base))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft,
		},
		Header: []string{"Date", base, "Cost", "Price Paid", "Value", "P&L", "P&L %", "Source"},
	}
	for _, s := range a.Tranches {
		table.Rows = append(table.Rows, []string{
			s.Tranche.On.String(),
			s.Tranche.BTC.String(),
			s.Tranche.Cost.String(),
			s.ImpliedPrice.String(),
			s.Value.String(),
			s.PnL.SignedString(),
			s.PnLPct.SignedString(),
			s.Tranche.Source,
		})
	}
	t := a.Total
	table.Rows = append(table.Rows, []string{
		"**Total**",
		t.TotalBTC.String(),
		t.TotalCost.String(),
		t.WeightedAvgCost.String(),
		t.Value.String(),
		t.PnL.SignedString(),
		t.PnLPct.SignedString(),
		fmt.Sprintf("%d tranches", t.Count),
	})
	doc.Table(table)
	return doc.String()
}
