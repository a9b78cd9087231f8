package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"hpblackjack-server/internal/rng"
)

func TestNewShoe(t *testing.T) {
	a := assert.New(t)

	shoe := NewShoe(rng.NewSeeded(1))
	a.Equal(Size, shoe.CardsLeft())

	expected := shoe.HashCode()
	a.Equal(expected, NewShoe(rng.NewSeeded(1)).HashCode())
	a.NotEqual(expected, NewShoe(rng.NewSeeded(2)).HashCode())
}

func TestShoe_Draw(t *testing.T) {
	a := assert.New(t)
	shoe := NewShoe(rng.NewSeeded(1))

	a.True(shoe.CanDraw(52))
	a.False(shoe.CanDraw(53))

	seen := make(map[Card]bool)
	for i := 0; i < Size; i++ {
		card, err := shoe.Draw()
		a.NoError(err)
		a.False(seen[card], "card %s drawn twice", card)
		seen[card] = true
	}

	a.Equal(Size, len(seen))
	a.False(shoe.CanDraw(1))

	card, err := shoe.Draw()
	a.Equal(ErrShoeExhausted, err)
	a.Equal(Card{}, card)

	shoe.Reset()
	a.True(shoe.CanDraw(52))
	a.Equal(0, len(shoe.Drawn()))
}

func TestShoe_Drawn(t *testing.T) {
	a := assert.New(t)
	shoe := NewStackedShoe(CardsFromString("1c,2d,3h"))

	c, _ := shoe.Draw()
	a.Equal(CardFromString("1c"), c)
	c, _ = shoe.Draw()
	a.Equal(CardFromString("2d"), c)
	a.Equal("1c,2d", CardsToString(shoe.Drawn()))
	a.Equal(1, shoe.CardsLeft())
}

func TestNewStackedShoe(t *testing.T) {
	a := assert.New(t)
	shoe := NewStackedShoe(CardsFromString("1c,13d"))

	c, err := shoe.Draw()
	a.NoError(err)
	a.Equal(CardFromString("1c"), c)
	_, _ = shoe.Draw()

	_, err = shoe.Draw()
	a.Equal(ErrShoeExhausted, err)

	shoe.Reset()
	c, err = shoe.Draw()
	a.NoError(err)
	a.Equal(CardFromString("1c"), c)
}

func TestShoe_Clone(t *testing.T) {
	a := assert.New(t)
	shoe := NewShoe(rng.NewSeeded(3))
	_, _ = shoe.Draw()

	cp := shoe.Clone()
	_, _ = cp.Draw()
	a.Equal(51, shoe.CardsLeft())
	a.Equal(50, cp.CardsLeft())
}

func TestShoe_JSON(t *testing.T) {
	a := assert.New(t)
	shoe := NewShoe(rng.NewSeeded(9))
	_, _ = shoe.Draw()
	_, _ = shoe.Draw()

	b, err := json.Marshal(shoe)
	a.NoError(err)

	var restored Shoe
	a.NoError(json.Unmarshal(b, &restored))
	a.Equal(shoe.CardsLeft(), restored.CardsLeft())
	a.Equal(shoe.HashCode(), restored.HashCode())
	a.Equal(shoe.Drawn(), restored.Drawn())

	a.EqualError(json.Unmarshal([]byte(`{"cards":[],"cursor":3}`), &restored), "shoe cursor out of range")
}
