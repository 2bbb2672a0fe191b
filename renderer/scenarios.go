package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/treasury/montecarlo"
	md "github.com/nao1215/markdown"
)

// ScenariosMarkdown lists the scenarios of a catalog.
func ScenariosMarkdown(c *montecarlo.Catalog) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Scenarios")

	table := md.TableSet{
		Header: []string{"Name", "Drift", "Volatility", "Beta", "Alpha", "Idio. Vol.", "Horizon", "Paths", "Description"},
	}
	for _, s := range c.Scenarios() {
		p := s.Params
		table.Rows = append(table.Rows, []string{
			s.Name,
			ratio(p.AnnualDrift),
			share(p.AnnualVolatility),
			fmt.Sprintf("%.2f", p.Beta),
			ratio(p.Alpha),
			share(p.IdioVolatility),
			fmt.Sprintf("%d days", s.HorizonDays),
			fmt.Sprint(s.NumPaths),
			s.Description,
		})
	}
	doc.Table(table)
	return doc.String()
}
