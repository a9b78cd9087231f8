package main

import (
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/deck"
)

// basicStrategy picks an action for the player's turn
// It is a simplified chart without splits.
func basicStrategy(state *blackjack.Snapshot) blackjack.Action {
	total, soft := deck.Hand(state.PlayerHand).Value()

	upcard := 0
	if card, ok := deck.Hand(state.DealerHand).FirstCard(); ok {
		upcard = card.Points()
	}

	if state.CanSurrender && !soft && total == 16 && (upcard == 10 || upcard == 11) {
		return blackjack.Surrender{}
	}

	if state.CanDouble && !soft && (total == 11 || (total == 10 && upcard < 10)) {
		return blackjack.DoubleDown{}
	}

	if soft {
		if total <= 17 || (total == 18 && upcard >= 9) {
			return blackjack.Hit{}
		}

		return blackjack.Stand{}
	}

	switch {
	case total <= 11:
		return blackjack.Hit{}
	case total == 12:
		if upcard >= 4 && upcard <= 6 {
			return blackjack.Stand{}
		}
		return blackjack.Hit{}
	case total <= 16:
		if upcard >= 7 {
			return blackjack.Hit{}
		}
		return blackjack.Stand{}
	}

	return blackjack.Stand{}
}
