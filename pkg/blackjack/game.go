package blackjack

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"hpblackjack-server/internal/rng"
	"hpblackjack-server/pkg/deck"
	"hpblackjack-server/pkg/ledger"
)

// Phase is the phase of the current round
type Phase string

// Phase constants
// A round always moves forward through these in order, and only NextRound goes back to betting.
const (
	// PhaseBetting is before any cards have been dealt
	PhaseBetting Phase = "betting"

	// PhasePlayerTurn means the player is deciding what to do with their hand
	PhasePlayerTurn Phase = "player-turn"

	// PhaseDealerTurn means the dealer is drawing
	// It never outlives the action that entered it.
	PhaseDealerTurn Phase = "dealer-turn"

	// PhaseSettlement means the round is over and the wager has been settled
	PhaseSettlement Phase = "settlement"
)

// GamePhase is the phase as the client sees it
type GamePhase string

// GamePhase constants
const (
	GamePhaseBetting GamePhase = "betting"
	GamePhasePlaying GamePhase = "playing"
	GamePhaseResult  GamePhase = "result"
)

// GamePhase maps the internal phase to what the client sees
func (p Phase) GamePhase() GamePhase {
	switch p {
	case PhasePlayerTurn, PhaseDealerTurn:
		return GamePhasePlaying
	case PhaseSettlement:
		return GamePhaseResult
	}

	return GamePhaseBetting
}

// ShoePolicy controls when the shoe is reshuffled
type ShoePolicy string

// ShoePolicy constants
const (
	// ShoePolicyPerRound shuffles a fresh 52-card shoe for every round
	ShoePolicyPerRound ShoePolicy = "per-round"

	// ShoePolicyContinuous draws one shoe down across rounds and reshuffles when it runs low
	ShoePolicyContinuous ShoePolicy = "continuous"
)

// Rules are the table rules for a game
type Rules struct {
	ShoePolicy ShoePolicy `json:"shoePolicy"`

	// ReshuffleThreshold is the minimum number of cards a continuous shoe needs before a deal
	ReshuffleThreshold int `json:"reshuffleThreshold"`

	// MaxBet limits a single bet, 0 means the player's HP is the only limit
	MaxBet int `json:"maxBet"`

	Dealer DealerPolicy `json:"dealer"`
}

// DefaultRules returns the standard table rules
func DefaultRules() Rules {
	return Rules{
		ShoePolicy:         ShoePolicyPerRound,
		ReshuffleThreshold: 15,
		MaxBet:             0,
		Dealer:             StandardDealer,
	}
}

// Validate returns an error if the rules cannot be played
func (r Rules) Validate() error {
	switch r.ShoePolicy {
	case ShoePolicyPerRound, ShoePolicyContinuous:
	default:
		return fmt.Errorf("unknown shoe policy: %s", r.ShoePolicy)
	}

	if r.ReshuffleThreshold < 4 || r.ReshuffleThreshold > deck.Size {
		return fmt.Errorf("reshuffle threshold must be between 4 and %d", deck.Size)
	}

	if r.MaxBet < 0 {
		return errors.New("max bet cannot be negative")
	}

	if r.Dealer.StandOn < 2 || r.Dealer.StandOn > deck.BlackjackTotal {
		return errors.New("dealer must stand on a total between 2 and 21")
	}

	return nil
}

// Game is the round state machine for a single player against the house
type Game struct {
	ID         string          `json:"id"`
	Round      int             `json:"round"`
	Phase      Phase           `json:"phase"`
	PlayerHand deck.Hand       `json:"playerHand"`
	DealerHand deck.Hand       `json:"dealerHand"`
	Bet        int             `json:"bet"`
	Wager      ledger.Wager    `json:"wager"`
	Doubled    bool            `json:"doubled"`
	Result     *ledger.Outcome `json:"result"`
	Message    string          `json:"message"`
	Rules      Rules           `json:"rules"`
	Shoe       *deck.Shoe      `json:"shoe"`
}

// NewGame returns a game waiting for the first bet
func NewGame(rules Rules, gen rng.Generator) *Game {
	return NewGameWithShoe(rules, deck.NewShoe(gen))
}

// NewGameWithShoe returns a game that deals from the given shoe
func NewGameWithShoe(rules Rules, shoe *deck.Shoe) *Game {
	return &Game{
		ID:      uuid.New().String(),
		Round:   1,
		Phase:   PhaseBetting,
		Message: "Place your bet",
		Rules:   rules,
		Shoe:    shoe,
	}
}

// Apply validates the action against the current phase and performs it
// hp is the authoritative balance before the action. When the action ends the round the
// settled ledger entry is returned; it must be committed together with the game.
// If an error is returned the game may have been partially changed and must be discarded.
func (g *Game) Apply(action Action, hp int, now time.Time) (*ledger.Entry, error) {
	if action == nil {
		return nil, UserError("missing action")
	}

	if hp < 0 {
		return nil, fmt.Errorf("negative balance: %d", hp)
	}

	return action.apply(g, turn{hp: hp, now: now})
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	cp := *g
	cp.PlayerHand = g.PlayerHand.Clone()
	cp.DealerHand = g.DealerHand.Clone()
	if g.Result != nil {
		result := *g.Result
		cp.Result = &result
	}

	if g.Shoe != nil {
		cp.Shoe = g.Shoe.Clone()
	}

	return &cp
}

// CanDouble returns true if a double down is legal with the given balance
func (g *Game) CanDouble(hp int) bool {
	return g.Phase == PhasePlayerTurn && len(g.PlayerHand) == 2 && hp >= g.Bet*2
}

// CanSurrender returns true if the player has not acted since the deal
func (g *Game) CanSurrender() bool {
	return g.Phase == PhasePlayerTurn && len(g.PlayerHand) == 2 && !g.Doubled
}

// Void abandons the round in progress without moving any HP
// This is used when the shoe runs out mid-round.
func (g *Game) Void(message string) {
	g.Wager.Release()
	g.Bet = 0
	g.Doubled = false
	g.PlayerHand = nil
	g.DealerHand = nil
	g.Result = nil
	g.Phase = PhaseBetting
	g.Message = message
	g.Shoe.Reset()
}

func (g *Game) draw() (deck.Card, error) {
	card, err := g.Shoe.Draw()
	if err != nil {
		return card, fmt.Errorf("round %d: %w", g.Round, err)
	}

	return card, nil
}

func (g *Game) prepareShoe() {
	switch g.Rules.ShoePolicy {
	case ShoePolicyContinuous:
		if !g.Shoe.CanDraw(g.Rules.ReshuffleThreshold) {
			g.Shoe.Reset()
		}
	default:
		g.Shoe.Reset()
	}
}

func (g *Game) placeBet(a PlaceBet, t turn) (*ledger.Entry, error) {
	if g.Phase != PhaseBetting {
		return nil, invalidAction(a, g.Phase, "")
	}

	if t.hp == 0 {
		return nil, invalidAction(a, g.Phase, "you are out of HP")
	}

	maxBet := t.hp
	if g.Rules.MaxBet > 0 && g.Rules.MaxBet < maxBet {
		maxBet = g.Rules.MaxBet
	}

	if a.Amount < 1 || a.Amount > maxBet {
		return nil, invalidAction(a, g.Phase, "bet must be between 1 and %d HP", maxBet)
	}

	if err := g.Wager.Escrow(a.Amount, t.hp); err != nil {
		return nil, invalidAction(a, g.Phase, "%v", err)
	}

	g.Bet = a.Amount
	g.prepareShoe()

	g.PlayerHand = make(deck.Hand, 0, 2)
	g.DealerHand = make(deck.Hand, 0, 2)
	for i := 0; i < 2; i++ {
		card, err := g.draw()
		if err != nil {
			return nil, err
		}
		g.PlayerHand.AddCard(card)

		card, err = g.draw()
		if err != nil {
			return nil, err
		}
		g.DealerHand.AddCard(card)
	}

	if g.PlayerHand.IsBlackjack() {
		return g.settle(g.resolve(), t)
	}

	g.Phase = PhasePlayerTurn
	g.Message = "Hit or stand?"
	return nil, nil
}

func (g *Game) hit(a Hit, t turn) (*ledger.Entry, error) {
	if g.Phase != PhasePlayerTurn {
		return nil, invalidAction(a, g.Phase, "")
	}

	card, err := g.draw()
	if err != nil {
		return nil, err
	}

	g.PlayerHand.AddCard(card)
	if g.PlayerHand.IsBust() {
		return g.settle(ledger.OutcomeBust, t)
	}

	g.Message = fmt.Sprintf("You drew %s", card)
	return nil, nil
}

func (g *Game) stand(a Stand, t turn) (*ledger.Entry, error) {
	if g.Phase != PhasePlayerTurn {
		return nil, invalidAction(a, g.Phase, "")
	}

	return g.dealerTurn(t)
}

func (g *Game) doubleDown(a DoubleDown, t turn) (*ledger.Entry, error) {
	if g.Phase != PhasePlayerTurn {
		return nil, invalidAction(a, g.Phase, "")
	}

	if len(g.PlayerHand) != 2 {
		return nil, invalidAction(a, g.Phase, "you can only double down on your first two cards")
	}

	if !g.CanDouble(t.hp) {
		return nil, invalidAction(a, g.Phase, "doubling requires %d HP", g.Bet*2)
	}

	if err := g.Wager.Double(t.hp); err != nil {
		return nil, invalidAction(a, g.Phase, "%v", err)
	}

	g.Bet = g.Wager.Amount
	g.Doubled = true

	card, err := g.draw()
	if err != nil {
		return nil, err
	}

	g.PlayerHand.AddCard(card)
	if g.PlayerHand.IsBust() {
		return g.settle(ledger.OutcomeBust, t)
	}

	return g.dealerTurn(t)
}

func (g *Game) surrender(a Surrender, t turn) (*ledger.Entry, error) {
	if g.Phase != PhasePlayerTurn {
		return nil, invalidAction(a, g.Phase, "")
	}

	if !g.CanSurrender() {
		return nil, invalidAction(a, g.Phase, "you can only surrender before taking a card")
	}

	return g.settle(ledger.OutcomeSurrender, t)
}

func (g *Game) nextRound(a NextRound) error {
	if g.Phase != PhaseSettlement {
		return invalidAction(a, g.Phase, "")
	}

	g.Round++
	g.Phase = PhaseBetting
	g.PlayerHand = nil
	g.DealerHand = nil
	g.Bet = 0
	g.Doubled = false
	g.Result = nil
	g.Message = "Place your bet"
	return nil
}

func (g *Game) dealerTurn(t turn) (*ledger.Entry, error) {
	g.Phase = PhaseDealerTurn

	hand, err := g.Rules.Dealer.Play(g.DealerHand, g.Shoe)
	if err != nil {
		return nil, fmt.Errorf("round %d: %w", g.Round, err)
	}

	g.DealerHand = hand
	return g.settle(g.resolve(), t)
}

// resolve compares the hands once neither side can act
func (g *Game) resolve() ledger.Outcome {
	player, dealer := g.PlayerHand, g.DealerHand

	switch {
	case player.IsBlackjack() && dealer.IsBlackjack():
		return ledger.OutcomePush
	case player.IsBlackjack():
		return ledger.OutcomeBlackjack
	case dealer.IsBlackjack():
		return ledger.OutcomeLose
	case player.IsBust():
		return ledger.OutcomeBust
	case dealer.IsBust():
		return ledger.OutcomeWin
	}

	playerTotal, dealerTotal := player.Total(), dealer.Total()
	switch {
	case playerTotal > dealerTotal:
		return ledger.OutcomeWin
	case playerTotal == dealerTotal:
		return ledger.OutcomePush
	}

	return ledger.OutcomeLose
}

func (g *Game) settle(outcome ledger.Outcome, t turn) (*ledger.Entry, error) {
	entry, err := g.Wager.Settle(t.hp, outcome, t.now)
	if err != nil {
		return nil, err
	}

	g.Phase = PhaseSettlement
	g.Result = &outcome
	g.Message = resultMessage(outcome, entry.Delta)
	return entry, nil
}

func resultMessage(outcome ledger.Outcome, delta int) string {
	switch outcome {
	case ledger.OutcomeBlackjack:
		return fmt.Sprintf("Blackjack! You gain %d HP", delta)
	case ledger.OutcomeWin:
		return fmt.Sprintf("You win %d HP", delta)
	case ledger.OutcomePush:
		return "Push. Your bet is returned"
	case ledger.OutcomeBust:
		return fmt.Sprintf("Bust! You lose %d HP", -delta)
	case ledger.OutcomeSurrender:
		return fmt.Sprintf("You surrendered %d HP", -delta)
	}

	return fmt.Sprintf("Dealer wins. You lose %d HP", -delta)
}
