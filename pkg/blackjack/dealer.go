package blackjack

import "hpblackjack-server/pkg/deck"

// DealerPolicy is the house's fixed drawing strategy
type DealerPolicy struct {
	// StandOn is the lowest total the dealer stands on, soft or hard
	StandOn int
}

// StandardDealer draws to 16 and stands on every 17
var StandardDealer = DealerPolicy{StandOn: 17}

// Play draws cards to the dealer's hand until the policy says stand
// The result only depends on the hand and the order the shoe issues cards.
func (p DealerPolicy) Play(hand deck.Hand, shoe *deck.Shoe) (deck.Hand, error) {
	hand = hand.Clone()
	for hand.Total() < p.StandOn {
		card, err := shoe.Draw()
		if err != nil {
			return hand, err
		}

		hand.AddCard(card)
	}

	return hand, nil
}
