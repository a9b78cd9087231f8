package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"hpblackjack-server/internal/rng"
	"hpblackjack-server/internal/util"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/deck"
	"hpblackjack-server/pkg/ledger"
	"hpblackjack-server/pkg/session"
)

// ErrPersistence is returned when a change could not be saved
// Nothing was changed and the same action can be submitted again.
var ErrPersistence = errors.New("could not save the game, please try again")

// ErrRoundInProgress is returned if a new game is requested while cards are in play
const ErrRoundInProgress = blackjack.UserError("finish the current round before starting a new game")

const voidedMessage = "The shoe ran out of cards. The round was voided and your bet returned"

// Options configures an Engine
type Options struct {
	Rules      blackjack.Rules
	StartingHP int

	// Generator shuffles the shoes, crypto/rand is used if nil
	Generator rng.Generator

	// Clock stamps ledger entries, the real clock is used if nil
	Clock quartz.Clock

	// NewShoe overrides how the shoe of a new game is built
	NewShoe func() *deck.Shoe
}

// Engine runs blackjack games for any number of players
// Actions for the same identity are processed one at a time.
type Engine struct {
	store session.Store
	opts  Options

	locksMu sync.Mutex
	locks   map[string]*semaphore.Weighted
}

// Request is a single action submitted by a player
type Request struct {
	Action blackjack.Action

	// Version is the version of the snapshot the action was chosen from
	Version int64
}

// Response is the result of an action
type Response struct {
	Success   bool                `json:"success"`
	GameState *blackjack.Snapshot `json:"gameState"`
	HPChange  int                 `json:"hpChange"`
	Message   string              `json:"message"`
}

// New returns an engine that keeps its state in store
func New(store session.Store, opts Options) (*Engine, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}

	if opts.StartingHP < 1 {
		return nil, errors.New("starting HP must be at least 1")
	}

	if opts.Generator == nil {
		opts.Generator = rng.Crypto{}
	}

	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}

	return &Engine{
		store: store,
		opts:  opts,
		locks: make(map[string]*semaphore.Weighted),
	}, nil
}

// IsUserError returns true if the error can be shown to the player as is
func IsUserError(err error) bool {
	var bjErr blackjack.UserError
	var sessErr session.UserError
	var actionErr *blackjack.InvalidActionError
	return errors.As(err, &bjErr) || errors.As(err, &sessErr) || errors.As(err, &actionErr)
}

// lock blocks until the caller holds the identity or ctx is done
func (e *Engine) lock(ctx context.Context, identity string) (func(), error) {
	e.locksMu.Lock()
	sem, ok := e.locks[identity]
	if !ok {
		sem = semaphore.NewWeighted(1)
		e.locks[identity] = sem
	}
	e.locksMu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	return func() {
		sem.Release(1)
	}, nil
}

func (e *Engine) newGame() *blackjack.Game {
	if e.opts.NewShoe != nil {
		return blackjack.NewGameWithShoe(e.opts.Rules, e.opts.NewShoe())
	}

	return blackjack.NewGame(e.opts.Rules, e.opts.Generator)
}

// load returns the session and its game
// If no game was stored yet, a fresh game with version 0 is returned.
func (e *Engine) load(ctx context.Context, identity string) (*session.Session, *session.GameRecord, error) {
	s, err := e.store.Get(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	rec, err := e.store.LoadGame(ctx, identity)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return nil, nil, err
		}

		rec = &session.GameRecord{Game: e.newGame()}
	}

	rec.Game.Shoe.SetGenerator(e.opts.Generator)
	return s, rec, nil
}

// State returns the current game as the player sees it
func (e *Engine) State(ctx context.Context, identity string) (*blackjack.Snapshot, error) {
	unlock, err := e.lock(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, rec, err := e.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	return rec.Game.Snapshot(s.HP, rec.Version), nil
}

// Perform applies the action to the player's game
// Actions that are not legal right now are answered with an unsuccessful response and change
// nothing. session.ErrConcurrencyConflict is returned if req.Version is not the current version.
func (e *Engine) Perform(ctx context.Context, identity string, req Request) (*Response, error) {
	if req.Action == nil {
		return nil, blackjack.UserError("missing action")
	}

	unlock, err := e.lock(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer unlock()

	log := logrus.WithFields(logrus.Fields{
		"identity": identity,
		"action":   req.Action.Name(),
	})

	s, rec, err := e.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	if req.Version != rec.Version {
		log.WithFields(logrus.Fields{
			"version":        req.Version,
			"currentVersion": rec.Version,
		}).Warn("rejected action from a stale snapshot")
		return nil, session.ErrConcurrencyConflict
	}

	g := rec.Game.Clone()
	entry, err := g.Apply(req.Action, s.HP, e.opts.Clock.Now())
	if err != nil {
		if errors.Is(err, deck.ErrShoeExhausted) {
			log.WithError(err).Error("shoe exhausted mid-round")
			return e.void(ctx, identity, s, rec)
		}

		if IsUserError(err) {
			return &Response{
				Success:   false,
				GameState: rec.Game.Snapshot(s.HP, rec.Version),
				Message:   err.Error(),
			}, nil
		}

		return nil, err
	}

	updated, version, err := e.store.Commit(ctx, &session.Commit{
		Identity:        identity,
		Game:            g,
		ExpectedVersion: rec.Version,
		Entry:           entry,
	})
	if err != nil {
		return nil, e.commitError(log, err)
	}

	log.WithFields(logrus.Fields{
		"phase":   g.Phase,
		"version": version,
	}).Debug("action committed")

	resp := &Response{
		Success:   true,
		GameState: g.Snapshot(updated.HP, version),
		Message:   g.Message,
	}

	if entry != nil {
		resp.HPChange = entry.Delta
		log.WithFields(logrus.Fields{
			"outcome": entry.Outcome,
			"delta":   entry.Delta,
			"hp":      entry.HPAfter,
		}).Info("round settled")
	}

	return resp, nil
}

// void abandons the round in progress and stores a fresh shoe
func (e *Engine) void(ctx context.Context, identity string, s *session.Session, rec *session.GameRecord) (*Response, error) {
	g := rec.Game.Clone()
	g.Void(voidedMessage)

	updated, version, err := e.store.Commit(ctx, &session.Commit{
		Identity:        identity,
		Game:            g,
		ExpectedVersion: rec.Version,
	})
	if err != nil {
		return nil, e.commitError(logrus.WithField("identity", identity), err)
	}

	return &Response{
		Success:   false,
		GameState: g.Snapshot(updated.HP, version),
		Message:   g.Message,
	}, nil
}

func (e *Engine) commitError(log *logrus.Entry, err error) error {
	if errors.Is(err, session.ErrConcurrencyConflict) {
		log.Warn("game changed while the action was applied")
		return err
	}

	log.WithError(err).Error("could not commit game")
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// NewGame throws away the current game and restores the starting HP
func (e *Engine) NewGame(ctx context.Context, identity string) (*blackjack.Snapshot, error) {
	unlock, err := e.lock(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, rec, err := e.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	if rec.Game.Phase == blackjack.PhasePlayerTurn {
		return nil, ErrRoundInProgress
	}

	g := e.newGame()
	hp := e.opts.StartingHP
	updated, version, err := e.store.Commit(ctx, &session.Commit{
		Identity:        identity,
		Game:            g,
		ExpectedVersion: rec.Version,
		ResetHP:         &hp,
	})
	if err != nil {
		return nil, e.commitError(logrus.WithField("identity", identity), err)
	}

	logrus.WithFields(logrus.Fields{
		"identity": identity,
		"gameID":   g.ID,
		"hp":       hp,
	}).Info("new game")

	return g.Snapshot(updated.HP, version), nil
}

// Profile returns the player's profile
func (e *Engine) Profile(ctx context.Context, identity string) (*session.Profile, error) {
	s, err := e.store.Get(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.Profile(), nil
}

// CreateProfile creates the player with the starting HP
// A random name is picked if username is blank.
func (e *Engine) CreateProfile(ctx context.Context, identity, username string, avatar *string) (*session.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = util.GetRandomName(e.opts.Generator)
	}

	if err := session.ValidateProfile(username, avatar); err != nil {
		return nil, err
	}

	s, err := e.store.Create(ctx, identity, username, avatar, e.opts.StartingHP)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"identity": identity,
		"username": username,
	}).Info("profile created")

	return s.Profile(), nil
}

// UpdateProfile changes the player's username and avatar
func (e *Engine) UpdateProfile(ctx context.Context, identity, username string, avatar *string) (*session.Profile, error) {
	username = strings.TrimSpace(username)
	if err := session.ValidateProfile(username, avatar); err != nil {
		return nil, err
	}

	s, err := e.store.UpdateProfile(ctx, identity, username, avatar)
	if err != nil {
		return nil, err
	}

	return s.Profile(), nil
}

// History returns the player's most recent settled rounds, newest first
func (e *Engine) History(ctx context.Context, identity string, limit int) ([]*ledger.Entry, error) {
	if limit < 1 || limit > 100 {
		return nil, blackjack.UserError("limit must be between 1 and 100")
	}

	return e.store.Entries(ctx, identity, limit)
}
