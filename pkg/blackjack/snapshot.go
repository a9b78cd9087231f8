package blackjack

import (
	"hpblackjack-server/pkg/deck"
	"hpblackjack-server/pkg/ledger"
)

// Snapshot is the state of the game as the player is allowed to see it
type Snapshot struct {
	GameID       string          `json:"gameId"`
	Round        int             `json:"round"`
	GamePhase    GamePhase       `json:"gamePhase"`
	PlayerHand   []deck.Card     `json:"playerHand"`
	DealerHand   []deck.Card     `json:"dealerHand"`
	PlayerValue  string          `json:"playerValue"`
	DealerValue  string          `json:"dealerValue"`
	CurrentBet   int             `json:"currentBet"`
	CanDouble    bool            `json:"canDouble"`
	CanSurrender bool            `json:"canSurrender"`
	RoundResult  *ledger.Outcome `json:"roundResult"`
	Message      string          `json:"message"`
	HP           int             `json:"hp"`
	GameOver     bool            `json:"gameOver"`

	// Version must be sent back with the next action
	Version int64 `json:"version"`
}

// Snapshot returns what the player sees with the given balance
// The dealer's hole card is withheld until the player's turn is over.
func (g *Game) Snapshot(hp int, version int64) *Snapshot {
	dealerHand := g.DealerHand.Clone()
	if g.Phase.GamePhase() == GamePhasePlaying && len(dealerHand) > 1 {
		dealerHand = dealerHand[:1]
	}

	if dealerHand == nil {
		dealerHand = deck.Hand{}
	}

	playerHand := g.PlayerHand.Clone()
	if playerHand == nil {
		playerHand = deck.Hand{}
	}

	var result *ledger.Outcome
	if g.Result != nil {
		r := *g.Result
		result = &r
	}

	return &Snapshot{
		GameID:       g.ID,
		Round:        g.Round,
		GamePhase:    g.Phase.GamePhase(),
		PlayerHand:   playerHand,
		DealerHand:   dealerHand,
		PlayerValue:  playerHand.Display(),
		DealerValue:  dealerHand.Display(),
		CurrentBet:   g.Bet,
		CanDouble:    g.CanDouble(hp),
		CanSurrender: g.CanSurrender(),
		RoundResult:  result,
		Message:      g.Message,
		HP:           hp,
		GameOver:     hp == 0,
		Version:      version,
	}
}
