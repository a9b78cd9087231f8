package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/quartz"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/ledger"
)

// MemoryStore keeps sessions in memory
// Games are stored encoded, so nothing handed out by the store shares memory with it.
type MemoryStore struct {
	clock   quartz.Clock
	lock    sync.Mutex
	records map[string]*memoryRecord
}

type memoryRecord struct {
	session *Session
	game    []byte
	version int64
	entries []*ledger.Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		records: make(map[string]*memoryRecord),
	}
}

// Get returns the session for the identity
func (m *MemoryStore) Get(_ context.Context, identity string) (*Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[identity]
	if !ok {
		return nil, ErrNotFound
	}

	return rec.session.Clone(), nil
}

// Create creates a session
func (m *MemoryStore) Create(_ context.Context, identity, username string, avatar *string, hp int) (*Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.records[identity]; ok {
		return nil, ErrDuplicateKey
	}

	now := m.clock.Now()
	s := &Session{
		Identity:     identity,
		Username:     username,
		Avatar:       avatar,
		HP:           hp,
		RegisteredAt: now,
		LastActive:   now,
	}

	s = s.Clone()
	m.records[identity] = &memoryRecord{session: s}
	return s.Clone(), nil
}

// UpdateProfile changes the username and avatar
func (m *MemoryStore) UpdateProfile(_ context.Context, identity, username string, avatar *string) (*Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[identity]
	if !ok {
		return nil, ErrNotFound
	}

	s := rec.session.Clone()
	s.Username = username
	s.Avatar = avatar
	s.LastActive = m.clock.Now()

	rec.session = s.Clone()
	return s, nil
}

// ApplyRoundResult counts a finished round
func (m *MemoryStore) ApplyRoundResult(_ context.Context, identity string, won bool) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[identity]
	if !ok {
		return ErrNotFound
	}

	rec.session.recordOutcome(won, !won)
	rec.session.LastActive = m.clock.Now()
	return nil
}

// LoadGame returns the stored game
func (m *MemoryStore) LoadGame(_ context.Context, identity string) (*GameRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[identity]
	if !ok || rec.game == nil {
		return nil, ErrNotFound
	}

	var g blackjack.Game
	if err := json.Unmarshal(rec.game, &g); err != nil {
		return nil, err
	}

	return &GameRecord{Game: &g, Version: rec.version}, nil
}

// Commit stores the game and any settlement atomically
func (m *MemoryStore) Commit(_ context.Context, c *Commit) (*Session, int64, error) {
	data, err := json.Marshal(c.Game)
	if err != nil {
		return nil, 0, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[c.Identity]
	if !ok {
		return nil, 0, ErrNotFound
	}

	if rec.version != c.ExpectedVersion {
		return nil, 0, ErrConcurrencyConflict
	}

	// work on a copy so a rejected commit changes nothing
	s := rec.session.Clone()
	if c.ResetHP != nil {
		s.HP = *c.ResetHP
	}

	if c.Entry != nil {
		if c.Entry.HPBefore != s.HP {
			return nil, 0, ErrConcurrencyConflict
		}

		if c.Entry.HPAfter < 0 {
			return nil, 0, ErrNegativeBalance
		}

		s.HP = c.Entry.HPAfter
		s.recordOutcome(c.Entry.Outcome.Won(), c.Entry.Outcome.Lost())
	}

	s.LastActive = m.clock.Now()

	rec.session = s
	rec.game = data
	rec.version++
	if c.Entry != nil {
		entry := *c.Entry
		rec.entries = append(rec.entries, &entry)
	}

	return s.Clone(), rec.version, nil
}

// Entries returns the most recent ledger entries, newest first
func (m *MemoryStore) Entries(_ context.Context, identity string, limit int) ([]*ledger.Entry, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[identity]
	if !ok {
		return nil, ErrNotFound
	}

	if limit < 0 {
		limit = 0
	}

	entries := make([]*ledger.Entry, 0, limit)
	for i := len(rec.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entry := *rec.entries[i]
		entries = append(entries, &entry)
	}

	return entries, nil
}
