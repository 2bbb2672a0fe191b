package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/treasury/montecarlo"
	md "github.com/nao1215/markdown"
)

// CalibrationMarkdown renders the beta model fitted on history.
func CalibrationMarkdown(c *montecarlo.Calibration, base, derived string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s on %s Calibration", derived, base))
	doc.PlainText(fmt.Sprintf("%d daily returns from %s to %s.", c.Returns, c.From, c.To))
	p := c.Params
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Parameter", "Value"},
		Rows: [][]string{
			{base + " drift", ratio(p.AnnualDrift)},
			{base + " volatility", share(p.AnnualVolatility)},
			{"Beta", fmt.Sprintf("%.3f", p.Beta)},
			{"Alpha", ratio(p.Alpha)},
			{derived + " idiosyncratic volatility", share(p.IdioVolatility)},
			{"Correlation", fmt.Sprintf("%.3f", c.Correlation)},
			{"R²", fmt.Sprintf("%.3f", c.RSquared)},
		},
	})
	return doc.String()
}
