package runner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/bargain/pkg/domain"
)

// numberRe matches grouped thousands ("1,200") before plain runs of digits.
var numberRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d{2,6}`)

// ComposeReply renders a deterministic markdown reply for one turn. The only
// price it quotes is ShownPrice; product text from the policy is copied as is.
func ComposeReply(res domain.TurnResult) string {
	c := res.Contract
	price := ShownPrice(c)
	var b strings.Builder

	switch c.State.Phase {
	case domain.PhaseAccept:
		fmt.Fprintf(&b, "Deal! **%s** is yours for **%d**.", c.Product.Title, price)
		if c.NLG.CTA != "" {
			fmt.Fprintf(&b, " %s.", strings.TrimSuffix(c.NLG.CTA, "."))
		}
	case domain.PhaseReject:
		b.WriteString("Understood. Thanks for your time, the door stays open.")
	case domain.PhaseEnd:
		b.WriteString("This negotiation is closed.")
	case domain.PhaseHold:
		fmt.Fprintf(&b, "**%d** is the best I can do for **%s**.", price, c.Product.Title)
		writeReasons(&b, c.Product.ValueReasons)
	default:
		if c.Pricing.UsedConcessions == 0 && c.Pricing.UserOffer == nil {
			fmt.Fprintf(&b, "**%s** is listed at **%d**.", c.Product.Title, price)
			writeReasons(&b, c.Product.ValueReasons)
			b.WriteString("\n\nWhat would you like to offer?")
			break
		}
		fmt.Fprintf(&b, "I can offer **%d**.", price)
		if !c.State.CanNegotiate {
			b.WriteString(" That is my final price.")
		}
	}
	return b.String()
}

func writeReasons(b *strings.Builder, reasons []string) {
	if len(reasons) == 0 {
		return
	}
	b.WriteString("\n")
	for _, r := range reasons {
		fmt.Fprintf(b, "\n- %s", r)
	}
}

// ShownPrice is the one price a reply may quote: offer_to_show, raised to the
// hard floor.
func ShownPrice(c domain.Contract) int {
	return max(c.Pricing.OfferToShow, c.HardGuard.MustNotPriceBelow)
}

// GuardReply rewrites every price-like number of an external draft, such as a
// language-model reply, that differs from ShownPrice. The renderer cannot tell
// prices from other figures, so every 2 to 6 digit number counts.
func GuardReply(text string, c domain.Contract) string {
	allowed := ShownPrice(c)
	shown := strconv.Itoa(allowed)

	return numberRe.ReplaceAllStringFunc(text, func(match string) string {
		n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
		if err != nil || n == allowed {
			return match
		}
		return shown
	})
}
