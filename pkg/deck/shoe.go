package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"encoding/json"
	"errors"

	"hpblackjack-server/internal/rng"
)

// Size is the number of cards in a single deck
const Size = 52

// ErrShoeExhausted is an error when Draw() is attempted and there are no more cards
var ErrShoeExhausted = errors.New("shoe exhausted")

// Shoe is a shuffled deck that issues cards without replacement
// Cards before the cursor have been drawn and cannot be drawn again until Reset() is called.
type Shoe struct {
	cards  []Card
	cursor int

	// stack is set for shoes with a predetermined order
	stack []Card
	gen   rng.Generator
}

// NewShoe returns a freshly built and shuffled 52-card shoe
func NewShoe(gen rng.Generator) *Shoe {
	s := &Shoe{gen: gen}
	s.Reset()
	return s
}

// NewStackedShoe returns a shoe that draws the cards in the order given
// Reset() restores the same order. This is used by tests and replays.
func NewStackedShoe(cards []Card) *Shoe {
	stack := make([]Card, len(cards))
	copy(stack, cards)

	s := &Shoe{stack: stack}
	s.Reset()
	return s
}

// SetGenerator sets the generator used by the next Reset()
// Shoes restored from storage do not carry a generator.
func (s *Shoe) SetGenerator(gen rng.Generator) {
	s.gen = gen
}

// Reset rebuilds the deck and reshuffles it
func (s *Shoe) Reset() {
	s.cursor = 0
	if s.stack != nil {
		s.cards = make([]Card, len(s.stack))
		copy(s.cards, s.stack)
		return
	}

	s.cards = buildDeck()
	if s.gen == nil {
		s.gen = rng.Crypto{}
	}

	// Fisher-Yates
	for j := len(s.cards) - 1; j > 0; j-- {
		i := s.gen.Intn(j + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

func buildDeck() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}

	return cards
}

// Draw will draw the next card
// If there are no more cards, ErrShoeExhausted is returned.
func (s *Shoe) Draw() (Card, error) {
	if s.cursor >= len(s.cards) {
		return Card{}, ErrShoeExhausted
	}

	card := s.cards[s.cursor]
	s.cursor++
	return card, nil
}

// CanDraw returns true if there are {want} cards left in the shoe
func (s *Shoe) CanDraw(want int) bool {
	return s.CardsLeft() >= want
}

// CardsLeft returns the number of cards left in the shoe
func (s *Shoe) CardsLeft() int {
	return len(s.cards) - s.cursor
}

// Drawn returns the cards that have been issued since the last reset
func (s *Shoe) Drawn() []Card {
	drawn := make([]Card, s.cursor)
	copy(drawn, s.cards[:s.cursor])
	return drawn
}

// HashCode returns a SHA1 hash code of the remaining cards
func (s *Shoe) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range s.cards[s.cursor:] {
		_, _ = hash.Write([]byte(card.String()))
	}

	return hex.EncodeToString(hash.Sum(nil))
}

// Clone returns a copy of the shoe that shares the generator
func (s *Shoe) Clone() *Shoe {
	cp := &Shoe{
		cards:  make([]Card, len(s.cards)),
		cursor: s.cursor,
		gen:    s.gen,
	}
	copy(cp.cards, s.cards)

	if s.stack != nil {
		cp.stack = make([]Card, len(s.stack))
		copy(cp.stack, s.stack)
	}

	return cp
}

type shoeJSON struct {
	Cards  []Card `json:"cards"`
	Cursor int    `json:"cursor"`
	Stack  []Card `json:"stack,omitempty"`
}

// MarshalJSON encodes the shoe for persistence
// This must never be sent to a client.
func (s *Shoe) MarshalJSON() ([]byte, error) {
	return json.Marshal(shoeJSON{
		Cards:  s.cards,
		Cursor: s.cursor,
		Stack:  s.stack,
	})
}

// UnmarshalJSON restores a persisted shoe
func (s *Shoe) UnmarshalJSON(b []byte) error {
	var sj shoeJSON
	if err := json.Unmarshal(b, &sj); err != nil {
		return err
	}

	if sj.Cursor < 0 || sj.Cursor > len(sj.Cards) {
		return errors.New("shoe cursor out of range")
	}

	s.cards = sj.Cards
	s.cursor = sj.Cursor
	s.stack = sj.Stack
	return nil
}
