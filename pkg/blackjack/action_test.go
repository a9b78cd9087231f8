package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	a := assert.New(t)

	test := func(name string, amount int, expected Action) {
		t.Helper()

		action, err := ParseAction(name, amount)
		a.NoError(err)
		a.Equal(expected, action)
	}

	test("placeBet", 10, PlaceBet{Amount: 10})
	test("PlaceBet", 25, PlaceBet{Amount: 25})
	test("hit", 0, Hit{})
	test("Stand", 0, Stand{})
	test("doubleDown", 0, DoubleDown{})
	test("surrender", 0, Surrender{})
	test("nextRound", 0, NextRound{})

	_, err := ParseAction("split", 0)
	a.Equal(ErrSplitNotSupported, err)

	_, err = ParseAction("insurance", 0)
	a.EqualError(err, "unknown action: insurance")
	_, ok := err.(UserError)
	a.True(ok)
}

func TestAction_Name(t *testing.T) {
	a := assert.New(t)
	for _, action := range []Action{PlaceBet{}, Hit{}, Stand{}, DoubleDown{}, Surrender{}, NextRound{}} {
		parsed, err := ParseAction(action.Name(), 0)
		a.NoError(err)
		a.Equal(action, parsed)
	}
}
