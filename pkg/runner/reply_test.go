package runner

import (
	"context"
	"testing"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(t *testing.T, n *bargain.Negotiation, text string) domain.TurnResult {
	t.Helper()
	res, err := n.Turn(context.Background(), ParseSummary(text))
	require.NoError(t, err)
	return res
}

func TestComposeReply(t *testing.T) {
	n, err := bargain.New(domain.DefaultConfig())
	require.NoError(t, err)

	opening := ComposeReply(turn(t, n, "hi"))
	assert.Contains(t, opening, "listed at **500**")
	assert.Contains(t, opening, "- Genuine product with after-sales support")

	counter := ComposeReply(turn(t, n, "440"))
	assert.Equal(t, "I can offer **470**.", counter)

	hold := ComposeReply(turn(t, n, "300"))
	assert.Contains(t, hold, "**420** is the best I can do")

	_, err = n.Confirm(context.Background())
	require.NoError(t, err)
	deal := ComposeReply(n.View(ParseSummary("deal")))
	assert.Contains(t, deal, "Deal! **Demo product** is yours for **420**.")
	assert.Contains(t, deal, "Confirm now to lock the order")
}

func TestComposeReply_KeepsPolicyFigures(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Policy.ProductTitle = "Lamp 2000"
	cfg.Policy.ValueReasons = []string{"Ships within 48 hours", "Rated for 20000 hours"}
	n, err := bargain.New(cfg)
	require.NoError(t, err)

	opening := ComposeReply(turn(t, n, "hi"))
	assert.Contains(t, opening, "**Lamp 2000** is listed at **500**")
	assert.Contains(t, opening, "- Ships within 48 hours")
	assert.Contains(t, opening, "- Rated for 20000 hours")

	turn(t, n, "440")
	hold := ComposeReply(turn(t, n, "300"))
	assert.Contains(t, hold, "**420** is the best I can do for **Lamp 2000**")
	assert.Contains(t, hold, "- Rated for 20000 hours")
}

func TestComposeReply_FloorWins(t *testing.T) {
	res := domain.TurnResult{Contract: domain.Contract{
		State:     domain.ContractState{Phase: domain.PhaseWaitUser, CanNegotiate: true},
		Pricing:   domain.ContractPricing{OfferToShow: 300, UsedConcessions: 1},
		HardGuard: domain.HardGuard{MustNotPriceBelow: 420},
	}}
	assert.Equal(t, "I can offer **420**.", ComposeReply(res))
}

func TestComposeReply_Reject(t *testing.T) {
	n, err := bargain.New(domain.DefaultConfig())
	require.NoError(t, err)
	turn(t, n, "hi")

	_, err = n.GiveUp(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ComposeReply(n.View(domain.Summary{Intent: domain.IntentOther})), "Thanks for your time")

	_, err = n.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "This negotiation is closed.", ComposeReply(n.View(domain.Summary{})))
}

func TestGuardReply(t *testing.T) {
	contract := domain.Contract{
		Pricing:   domain.ContractPricing{OfferToShow: 470},
		HardGuard: domain.HardGuard{MustNotPriceBelow: 420},
	}

	tests := []struct {
		name  string
		draft string
		want  string
	}{
		{"Allowed Price Kept", "I can do 470.", "I can do 470."},
		{"Below Floor Replaced", "Fine, 399 then.", "Fine, 470 then."},
		{"Other Price Replaced", "Between 480 and 460 we meet.", "Between 470 and 470 we meet."},
		{"Grouped Thousands", "Was 1,200 before.", "Was 470 before."},
		{"Single Digits Kept", "Ships in 3 days.", "Ships in 3 days."},
		{"No Numbers", "Thanks!", "Thanks!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuardReply(tt.draft, contract))
		})
	}
}

func TestGuardReply_FloorWins(t *testing.T) {
	contract := domain.Contract{
		Pricing:   domain.ContractPricing{OfferToShow: 300},
		HardGuard: domain.HardGuard{MustNotPriceBelow: 420},
	}
	assert.Equal(t, "Only 420.", GuardReply("Only 300.", contract))
}
