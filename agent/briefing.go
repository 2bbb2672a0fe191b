package agent

import (
	"fmt"
	"strings"

	"github.com/etnz/treasury"
)

// headline is the one line state of the book shown when a session opens.
func headline(b *treasury.Book) string {
	nav, err := latestNAV(b)
	if err != nil {
		return "No " + b.BaseTicker + " price yet."
	}
	return fmt.Sprintf("%s BTC held, %s at %s and %s at %s on %s.",
		nav.TotalBTC, b.BaseTicker, nav.BTCPrice, b.EquityTicker, nav.SharePrice, nav.On)
}

func latestNAV(b *treasury.Book) (*treasury.NAV, error) {
	prices := b.Market.Prices(b.BaseTicker)
	if prices.Len() == 0 {
		return nil, fmt.Errorf("%w: no %s price", treasury.ErrNoData, b.BaseTicker)
	}
	on, _ := prices.Latest()
	return b.ComputeNAV(on)
}

// Briefing describes the book as of the latest base asset close: holdings,
// valuation against bitcoin and the active share position.
func Briefing(b *treasury.Book) string {
	var sb strings.Builder
	sb.WriteString("State of the treasury book.\n")
	nav, err := latestNAV(b)
	if err != nil {
		fmt.Fprintf(&sb, "- no valuation is possible: %v\n", err)
		return sb.String()
	}
	fmt.Fprintf(&sb, "- latest close: %s\n", nav.On)
	fmt.Fprintf(&sb, "- bitcoin held: %s BTC in %d tranches\n", nav.TotalBTC, len(b.Tranches))
	fmt.Fprintf(&sb, "- %s price: %s, %s price: %s\n", b.BaseTicker, nav.BTCPrice, b.EquityTicker, nav.SharePrice)
	fmt.Fprintf(&sb, "- bitcoin NAV: %s\n", nav.BTCNAV)
	if nav.HasStats {
		fmt.Fprintf(&sb, "- market cap: %s, premium to bitcoin NAV: %s\n", nav.MarketCap, nav.PremiumToBTCNAV.SignedString())
		if nav.HasBSNAVPremium {
			fmt.Fprintf(&sb, "- balance-sheet NAV: %s, premium: %s\n", nav.BSNAV, nav.PremiumToBSNAV.SignedString())
		}
	} else {
		sb.WriteString("- no company stats: market cap and premiums are unknown\n")
	}
	if m, err := b.PositionMetrics("", nav.On); err == nil {
		fmt.Fprintf(&sb, "- user position %q: %s shares, value %s, P&L %s\n",
			m.Position.Label, m.Position.Shares, m.Value, m.PnL.SignedString())
	} else {
		sb.WriteString("- the user holds no share position\n")
	}
	return sb.String()
}
