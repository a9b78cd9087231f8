package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/internal/rng"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/engine"
	"hpblackjack-server/pkg/ledger"
	"hpblackjack-server/pkg/session"
)

const identity = "simulator"

// CLI plays rounds against an in-memory engine
type CLI struct {
	Rounds     int    `default:"1000" help:"Number of rounds to play"`
	Bet        int    `default:"10" help:"HP wagered every round"`
	StartingHP int    `name:"starting-hp" default:"100" help:"HP at the start of every game"`
	Policy     string `default:"per-round" enum:"per-round,continuous" help:"Shoe policy: per-round, continuous"`
	Threshold  int    `default:"15" help:"Cards left before a continuous shoe is reshuffled"`
	Seed       int64  `default:"0" help:"RNG seed (0 for random)"`
	Verbose    bool   `short:"v" help:"Verbose logging"`
}

type stats struct {
	rounds   int
	games    int
	outcomes map[ledger.Outcome]int
	hpChange int
	voided   int
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli, kong.Description("Plays blackjack rounds with a basic strategy and prints the results."))

	if cli.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rules := blackjack.DefaultRules()
	rules.ShoePolicy = blackjack.ShoePolicy(cli.Policy)
	rules.ReshuffleThreshold = cli.Threshold

	clock := quartz.NewReal()
	e, err := engine.New(session.NewMemoryStore(clock), engine.Options{
		Rules:      rules,
		StartingHP: cli.StartingHP,
		Generator:  rng.NewSeeded(seed),
		Clock:      clock,
	})
	kctx.FatalIfErrorf(err)

	ctx := context.Background()
	_, err = e.CreateProfile(ctx, identity, "Simulator", nil)
	kctx.FatalIfErrorf(err)

	st, err := simulate(ctx, e, cli.Rounds, cli.Bet)
	kctx.FatalIfErrorf(err)

	profile, err := e.Profile(ctx, identity)
	kctx.FatalIfErrorf(err)

	printStats(st, profile, seed)
}

// simulate plays rounds until n are settled
// A new game is started whenever the player cannot cover the bet.
func simulate(ctx context.Context, e *engine.Engine, n, bet int) (*stats, error) {
	st := &stats{games: 1, outcomes: make(map[ledger.Outcome]int)}

	state, err := e.State(ctx, identity)
	if err != nil {
		return nil, err
	}

	for st.rounds < n {
		var action blackjack.Action
		switch state.GamePhase {
		case blackjack.GamePhaseBetting:
			if state.HP < bet {
				if state, err = e.NewGame(ctx, identity); err != nil {
					return nil, err
				}

				st.games++
				continue
			}

			action = blackjack.PlaceBet{Amount: bet}
		case blackjack.GamePhasePlaying:
			action = basicStrategy(state)
		default:
			action = blackjack.NextRound{}
		}

		resp, err := e.Perform(ctx, identity, engine.Request{Action: action, Version: state.Version})
		if err != nil {
			return nil, err
		}

		if !resp.Success {
			if resp.GameState.GamePhase != blackjack.GamePhaseBetting || resp.GameState.Version == state.Version {
				return nil, fmt.Errorf("%s was rejected: %s", action.Name(), resp.Message)
			}

			st.voided++
		}

		state = resp.GameState
		if state.GamePhase == blackjack.GamePhaseResult && state.RoundResult != nil {
			st.rounds++
			st.outcomes[*state.RoundResult]++
			st.hpChange += resp.HPChange
		}
	}

	return st, nil
}

func printStats(st *stats, profile *session.Profile, seed int64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	_, _ = fmt.Fprintf(w, "seed\t%d\n", seed)
	_, _ = fmt.Fprintf(w, "rounds\t%d\n", st.rounds)
	_, _ = fmt.Fprintf(w, "games\t%d\n", st.games)
	_, _ = fmt.Fprintf(w, "voided\t%d\n", st.voided)
	_, _ = fmt.Fprintf(w, "net hp\t%+d\n", st.hpChange)
	_, _ = fmt.Fprintf(w, "final hp\t%d\n", profile.HP)
	_, _ = fmt.Fprintf(w, "win rate\t%d%%\n", profile.WinRate)

	outcomes := make([]string, 0, len(st.outcomes))
	for outcome := range st.outcomes {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)

	for _, outcome := range outcomes {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", outcome, st.outcomes[ledger.Outcome(outcome)])
	}
}
