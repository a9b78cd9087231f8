package blackjack

import (
	"fmt"
	"strings"
	"time"

	"hpblackjack-server/pkg/ledger"
)

// Action is something the player asks the game to do
// The set of actions is closed: every action must implement apply, so a new action
// cannot be added without also teaching the game how to handle it.
type Action interface {
	Name() string

	apply(g *Game, t turn) (*ledger.Entry, error)
}

// turn is the context an action is applied in
type turn struct {
	hp  int
	now time.Time
}

// PlaceBet escrows a bet and deals the opening hands
type PlaceBet struct {
	Amount int `json:"amount"`
}

// Hit draws one card to the player's hand
type Hit struct{}

// Stand ends the player's turn
type Stand struct{}

// DoubleDown doubles the bet, draws exactly one card and stands
type DoubleDown struct{}

// Surrender forfeits half the bet
type Surrender struct{}

// NextRound clears the table after a settled round
type NextRound struct{}

// Name returns the action name
func (PlaceBet) Name() string { return "placeBet" }

// Name returns the action name
func (Hit) Name() string { return "hit" }

// Name returns the action name
func (Stand) Name() string { return "stand" }

// Name returns the action name
func (DoubleDown) Name() string { return "doubleDown" }

// Name returns the action name
func (Surrender) Name() string { return "surrender" }

// Name returns the action name
func (NextRound) Name() string { return "nextRound" }

func (a PlaceBet) apply(g *Game, t turn) (*ledger.Entry, error) {
	return g.placeBet(a, t)
}

func (a Hit) apply(g *Game, t turn) (*ledger.Entry, error) {
	return g.hit(a, t)
}

func (a Stand) apply(g *Game, t turn) (*ledger.Entry, error) {
	return g.stand(a, t)
}

func (a DoubleDown) apply(g *Game, t turn) (*ledger.Entry, error) {
	return g.doubleDown(a, t)
}

func (a Surrender) apply(g *Game, t turn) (*ledger.Entry, error) {
	return g.surrender(a, t)
}

func (a NextRound) apply(g *Game, _ turn) (*ledger.Entry, error) {
	return nil, g.nextRound(a)
}

// ParseAction returns an action from its name
// Names are matched case-insensitively, amount is only used by placeBet.
func ParseAction(name string, amount int) (Action, error) {
	switch strings.ToLower(name) {
	case "placebet", "bet":
		return PlaceBet{Amount: amount}, nil
	case "hit":
		return Hit{}, nil
	case "stand":
		return Stand{}, nil
	case "doubledown", "double":
		return DoubleDown{}, nil
	case "surrender":
		return Surrender{}, nil
	case "nextround":
		return NextRound{}, nil
	case "split":
		return nil, ErrSplitNotSupported
	}

	return nil, UserError(fmt.Sprintf("unknown action: %s", name))
}
