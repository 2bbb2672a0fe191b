package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/montecarlo"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// ratio formats a fraction as a signed percentage.
func ratio(r float64) string { return fmt.Sprintf("%+.2f%%", 100*r) }

// share formats a fraction as an unsigned percentage.
func share(r float64) string { return fmt.Sprintf("%.2f%%", 100*r) }

func usd(v float64) string { return treasury.USD(v).String() }

// percentile names a level the way quants do: P5, P50, P95.
func percentile(c montecarlo.Level) string { return fmt.Sprintf("P%.4g", 100*float64(c)) }
