package main

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hpblackjack-server/internal/rng"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/deck"
	"hpblackjack-server/pkg/engine"
	"hpblackjack-server/pkg/session"
)

func snapshot(player, dealer string, canDouble, canSurrender bool) *blackjack.Snapshot {
	return &blackjack.Snapshot{
		GamePhase:    blackjack.GamePhasePlaying,
		PlayerHand:   deck.CardsFromString(player),
		DealerHand:   deck.CardsFromString(dealer),
		CanDouble:    canDouble,
		CanSurrender: canSurrender,
	}
}

func Test_basicStrategy(t *testing.T) {
	tests := []struct {
		player, dealer string
		canDouble      bool
		canSurrender   bool
		want           blackjack.Action
	}{
		{"10s,6h", "13c", true, true, blackjack.Surrender{}},
		{"10s,6h", "13c", false, false, blackjack.Hit{}},
		{"10s,6h", "5c", true, true, blackjack.Stand{}},
		{"5s,6h", "10c", true, true, blackjack.DoubleDown{}},
		{"5s,6h", "10c", false, false, blackjack.Hit{}},
		{"4s,6h", "10c", true, true, blackjack.Hit{}},
		{"4s,6h", "9c", true, true, blackjack.DoubleDown{}},
		{"10s,2h", "5c", true, true, blackjack.Stand{}},
		{"10s,2h", "2c", true, true, blackjack.Hit{}},
		{"1s,6h", "5c", true, true, blackjack.Hit{}},
		{"1s,7h", "9c", true, true, blackjack.Hit{}},
		{"1s,7h", "5c", true, true, blackjack.Stand{}},
		{"10s,7h", "1c", true, true, blackjack.Stand{}},
		{"10s,5h,4d", "10c", false, false, blackjack.Stand{}},
	}

	for _, tt := range tests {
		got := basicStrategy(snapshot(tt.player, tt.dealer, tt.canDouble, tt.canSurrender))
		assert.Equal(t, tt.want, got, "%s vs %s", tt.player, tt.dealer)
	}
}

func Test_simulate(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	rules := blackjack.DefaultRules()
	rules.ShoePolicy = blackjack.ShoePolicyContinuous

	store := session.NewMemoryStore(quartz.NewMock(t))
	e, err := engine.New(store, engine.Options{
		Rules:      rules,
		StartingHP: 100,
		Generator:  rng.NewSeeded(42),
		Clock:      quartz.NewMock(t),
	})
	require.NoError(t, err)

	_, err = e.CreateProfile(ctx, identity, "Simulator", nil)
	require.NoError(t, err)

	st, err := simulate(ctx, e, 200, 10)
	a.NoError(err)
	a.Equal(200, st.rounds)

	total := 0
	for _, n := range st.outcomes {
		total += n
	}
	a.Equal(200, total)

	profile, err := e.Profile(ctx, identity)
	a.NoError(err)
	a.Equal(200, profile.TotalGames)
	a.Equal(st.outcomes["win"]+st.outcomes["blackjack"], profile.TotalWins)
	a.GreaterOrEqual(profile.HP, 0)
}
