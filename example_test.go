package bargain_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/pkg/domain"
)

// ExampleNew runs the reference negotiation: two concessions, then the buyer
// meets the standing offer.
func ExampleNew() {
	n, err := bargain.New(domain.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := n.Start(ctx); err != nil {
		log.Fatal(err)
	}

	for _, price := range []int{440, 430, 455} {
		snap, err := n.SubmitPrice(ctx, price)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("buyer %d -> %s %d\n", price, snap.Phase, snap.AIOffer)
	}

	// Output:
	// buyer 440 -> WAIT_USER 470
	// buyer 430 -> WAIT_USER 450
	// buyer 455 -> ACCEPT 450
}

// ExampleNegotiation_Contract shows the renderer payload once the floor is reached.
func ExampleNegotiation_Contract() {
	n, _ := bargain.New(domain.DefaultConfig())
	ctx := context.Background()
	_, _ = n.Start(ctx)
	_, _ = n.SubmitPrice(ctx, 300)

	c := n.Contract()
	fmt.Println(c.State.Phase, c.Pricing.OfferToShow, c.HardGuard.MustNotPriceBelow)
	fmt.Println(c.Actions.Allowed, c.Actions.Forbidden)

	// Output:
	// HOLD 420 420
	// [HOLD ACCEPT] [LOWER_PRICE]
}
