package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInsufficientHP is returned when a wager exceeds the available balance
var ErrInsufficientHP = errors.New("insufficient HP")

// ErrBetTooSmall is returned when a wager is below the 1 HP minimum
var ErrBetTooSmall = errors.New("bet must be at least 1 HP")

// ErrNoWager is returned when settling without an escrowed bet
var ErrNoWager = errors.New("no wager has been escrowed")

// Outcome is the terminal result of a round
type Outcome string

// Outcome constants
const (
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeBust      Outcome = "bust"
	OutcomeSurrender Outcome = "surrender"
)

// Won returns true if the player gained HP
func (o Outcome) Won() bool {
	return o == OutcomeWin || o == OutcomeBlackjack
}

// Lost returns true if the player forfeited HP
func (o Outcome) Lost() bool {
	return o == OutcomeLose || o == OutcomeBust || o == OutcomeSurrender
}

// Payout returns the signed HP delta for an outcome on a bet
//
//	win:       +bet
//	blackjack: +bet*3/2 (rounded down)
//	lose/bust: -bet
//	push:      0
//	surrender: -bet/2 (rounded down)
func Payout(outcome Outcome, bet int) int {
	switch outcome {
	case OutcomeWin:
		return bet
	case OutcomeBlackjack:
		return bet * 3 / 2
	case OutcomeLose, OutcomeBust:
		return -bet
	case OutcomeSurrender:
		return -(bet / 2)
	case OutcomePush:
		return 0
	}

	panic(fmt.Sprintf("unknown outcome: %s", outcome))
}

// Wager is the escrowed bet for a single round
// HP is not moved when a wager is escrowed, the escrow only reserves it.
type Wager struct {
	Amount int `json:"amount"`
}

// Available returns how much of hp is not reserved by the wager
func (w Wager) Available(hp int) int {
	return hp - w.Amount
}

// Escrow reserves amount against hp
func (w *Wager) Escrow(amount, hp int) error {
	if amount < 1 {
		return ErrBetTooSmall
	}

	if amount > w.Available(hp) {
		return ErrInsufficientHP
	}

	w.Amount += amount
	return nil
}

// Double escrows the same amount again
func (w *Wager) Double(hp int) error {
	if w.Amount == 0 {
		return ErrNoWager
	}

	return w.Escrow(w.Amount, hp)
}

// Release drops the escrow without moving any HP
func (w *Wager) Release() {
	w.Amount = 0
}

// Entry is a settled wager
type Entry struct {
	ID       string    `json:"id"`
	Outcome  Outcome   `json:"outcome"`
	Bet      int       `json:"bet"`
	Delta    int       `json:"delta"`
	HPBefore int       `json:"hpBefore"`
	HPAfter  int       `json:"hpAfter"`
	Created  time.Time `json:"created"`
}

// Settle resolves the wager against hp and releases the escrow
// The returned entry must be committed together with the round that produced it.
func (w *Wager) Settle(hp int, outcome Outcome, now time.Time) (*Entry, error) {
	if w.Amount == 0 {
		return nil, ErrNoWager
	}

	if w.Amount > hp {
		return nil, ErrInsufficientHP
	}

	delta := Payout(outcome, w.Amount)
	entry := &Entry{
		ID:       uuid.New().String(),
		Outcome:  outcome,
		Bet:      w.Amount,
		Delta:    delta,
		HPBefore: hp,
		HPAfter:  hp + delta,
		Created:  now,
	}

	w.Release()
	return entry, nil
}
