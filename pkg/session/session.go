package session

import (
	"context"
	"errors"
	"math"
	"net/url"
	"regexp"
	"time"

	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/ledger"
)

// ErrNotFound is returned when a session or game does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey happens if a session already exists for an identity
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// ErrConcurrencyConflict is returned when a commit was computed from stale state
var ErrConcurrencyConflict = errors.New("state changed since it was read")

// ErrNegativeBalance is returned if a commit would take HP below zero
var ErrNegativeBalance = errors.New("balance cannot be negative")

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

var validUsernameRx = regexp.MustCompile(`^[\p{L}\p{N} _-]{1,40}\z`)

// Session is the persisted record for a player
// Sessions are never deleted, only changed.
type Session struct {
	Identity     string    `json:"-"`
	Username     string    `json:"username"`
	Avatar       *string   `json:"avatar"`
	HP           int       `json:"hp"`
	TotalWins    int       `json:"totalWins"`
	TotalLoses   int       `json:"totalLoses"`
	TotalGames   int       `json:"totalGames"`
	RegisteredAt time.Time `json:"registeredAt"`
	LastActive   time.Time `json:"lastActive"`
}

// Profile is the public view of a session
type Profile struct {
	Username     string    `json:"username"`
	Avatar       *string   `json:"avatar"`
	HP           int       `json:"hp"`
	TotalWins    int       `json:"totalWins"`
	TotalLoses   int       `json:"totalLoses"`
	TotalGames   int       `json:"totalGames"`
	WinRate      int       `json:"winRate"`
	RegisteredAt time.Time `json:"registeredAt"`
	LastActive   time.Time `json:"lastActive"`
}

// Profile returns the public view of the session
func (s *Session) Profile() *Profile {
	return &Profile{
		Username:     s.Username,
		Avatar:       s.Avatar,
		HP:           s.HP,
		TotalWins:    s.TotalWins,
		TotalLoses:   s.TotalLoses,
		TotalGames:   s.TotalGames,
		WinRate:      s.WinRate(),
		RegisteredAt: s.RegisteredAt,
		LastActive:   s.LastActive,
	}
}

// WinRate returns the percentage of games won, rounded to the nearest whole number
func (s *Session) WinRate() int {
	if s.TotalGames == 0 {
		return 0
	}

	return int(math.Round(float64(s.TotalWins) / float64(s.TotalGames) * 100))
}

// Clone returns a copy of the session
func (s *Session) Clone() *Session {
	cp := *s
	if s.Avatar != nil {
		avatar := *s.Avatar
		cp.Avatar = &avatar
	}

	return &cp
}

// recordOutcome updates the counters for a settled round
// A push only counts as a game played.
func (s *Session) recordOutcome(won, lost bool) {
	s.TotalGames++
	if won {
		s.TotalWins++
	} else if lost {
		s.TotalLoses++
	}
}

// ValidateProfile returns a UserError if the username or avatar cannot be saved
func ValidateProfile(username string, avatar *string) error {
	if !validUsernameRx.MatchString(username) {
		return UserError("username must only contain letters, numbers, spaces, dashes and underscores, and be 40 characters or less")
	}

	if avatar != nil {
		u, err := url.Parse(*avatar)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || len(*avatar) > 2048 {
			return UserError("avatar must be an http or https URL")
		}
	}

	return nil
}

// GameRecord is the persisted game for a session
type GameRecord struct {
	Game *blackjack.Game

	// Version increases by one with every commit
	Version int64
}

// Commit is a single atomic change to a session
// Either everything in the commit is stored or nothing is.
type Commit struct {
	Identity string
	Game     *blackjack.Game

	// ExpectedVersion is the version the change was computed from, 0 if there was no game
	ExpectedVersion int64

	// Entry is set when the change settled a wager
	// Its HPBefore must match the stored balance.
	Entry *ledger.Entry

	// ResetHP replaces the balance when a new game is started
	ResetHP *int
}

// Store persists sessions and their games
type Store interface {
	// Get returns the session for the identity, or ErrNotFound
	Get(ctx context.Context, identity string) (*Session, error)

	// Create creates a session with the starting balance, or returns ErrDuplicateKey
	Create(ctx context.Context, identity, username string, avatar *string, hp int) (*Session, error)

	// UpdateProfile changes the username and avatar
	UpdateProfile(ctx context.Context, identity, username string, avatar *string) (*Session, error)

	// ApplyRoundResult counts a finished round without moving HP
	ApplyRoundResult(ctx context.Context, identity string, won bool) error

	// LoadGame returns the stored game, or ErrNotFound
	LoadGame(ctx context.Context, identity string) (*GameRecord, error)

	// Commit stores the game and any settlement atomically
	// ErrConcurrencyConflict is returned if the stored version or balance moved.
	Commit(ctx context.Context, c *Commit) (*Session, int64, error)

	// Entries returns the most recent ledger entries, newest first
	Entries(ctx context.Context, identity string, limit int) ([]*ledger.Entry, error)
}
