package deck

import "strconv"

// BlackjackTotal is the best possible hand total
const BlackjackTotal = 21

// Hand represents a collection of cards
type Hand []Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card Card) {
	*h = append(*h, card)
}

// Value returns the blackjack total of the hand
// Every ace starts at 11 and is downgraded to 1 while the total is over 21.
// soft is true if an ace is still counted as 11.
func (h Hand) Value() (total int, soft bool) {
	highAces := 0
	for _, card := range h {
		total += card.Points()
		if card.IsAce() {
			highAces++
		}
	}

	for total > BlackjackTotal && highAces > 0 {
		total -= 10
		highAces--
	}

	return total, highAces > 0
}

// Total returns the hand total without the soft flag
func (h Hand) Total() int {
	total, _ := h.Value()
	return total
}

// IsBlackjack returns true for a two-card 21
func (h Hand) IsBlackjack() bool {
	return len(h) == 2 && h.Total() == BlackjackTotal
}

// IsBust returns true if the total is over 21
func (h Hand) IsBust() bool {
	return h.Total() > BlackjackTotal
}

// Display renders the total the way a player reads it, e.g. "soft 17" or "17"
func (h Hand) Display() string {
	if len(h) == 0 {
		return ""
	}

	total, soft := h.Value()
	switch {
	case h.IsBlackjack():
		return "blackjack"
	case soft && total < BlackjackTotal:
		return "soft " + strconv.Itoa(total)
	}

	return strconv.Itoa(total)
}

// FirstCard returns the first card in the hand
// The second return value is false if the hand is empty.
func (h Hand) FirstCard() (Card, bool) {
	if len(h) == 0 {
		return Card{}, false
	}

	return h[0], true
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}

	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
