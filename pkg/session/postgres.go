package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/pkg/blackjack"
	"hpblackjack-server/pkg/db"
	"hpblackjack-server/pkg/ledger"
)

const sessionColumns = `
sessions.identity,
sessions.username,
sessions.avatar,
sessions.hp,
sessions.total_wins,
sessions.total_loses,
sessions.total_games,
sessions.registered_at,
sessions.last_active`

const ledgerColumns = `id, outcome, bet, delta, hp_before, hp_after, created`

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// PostgresStore keeps sessions in Postgres
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a store backed by the database handle
func NewPostgresStore(dbh *sql.DB) *PostgresStore {
	return &PostgresStore{db: dbh}
}

func getSessionByRow(row db.Scanner) (*Session, error) {
	var s Session
	var avatar sql.NullString
	if err := row.Scan(&s.Identity, &s.Username, &avatar, &s.HP, &s.TotalWins, &s.TotalLoses, &s.TotalGames, &s.RegisteredAt, &s.LastActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if avatar.Valid {
		s.Avatar = &avatar.String
	}

	return &s, nil
}

// Get returns the session for the identity
func (p *PostgresStore) Get(ctx context.Context, identity string) (*Session, error) {
	const query = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE identity = $1`

	return getSessionByRow(p.db.QueryRowContext(ctx, query, identity))
}

// Create creates a session
func (p *PostgresStore) Create(ctx context.Context, identity, username string, avatar *string, hp int) (*Session, error) {
	const query = `
INSERT INTO sessions (identity, username, avatar, hp)
VALUES ($1, $2, $3, $4)
RETURNING ` + sessionColumns

	s, err := getSessionByRow(p.db.QueryRowContext(ctx, query, identity, username, avatar, hp))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	return s, nil
}

// UpdateProfile changes the username and avatar
func (p *PostgresStore) UpdateProfile(ctx context.Context, identity, username string, avatar *string) (*Session, error) {
	const query = `
UPDATE sessions
SET username = $1,
    avatar = $2,
    last_active = (NOW() AT TIME ZONE 'utc')
WHERE identity = $3
RETURNING ` + sessionColumns

	return getSessionByRow(p.db.QueryRowContext(ctx, query, username, avatar, identity))
}

// ApplyRoundResult counts a finished round
func (p *PostgresStore) ApplyRoundResult(ctx context.Context, identity string, won bool) error {
	return applyRoundResult(ctx, p.db, identity, won, !won)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func applyRoundResult(ctx context.Context, e execer, identity string, won, lost bool) error {
	const query = `
UPDATE sessions
SET total_games = total_games + 1,
    total_wins = total_wins + $1,
    total_loses = total_loses + $2,
    last_active = (NOW() AT TIME ZONE 'utc')
WHERE identity = $3`

	res, err := e.ExecContext(ctx, query, boolToInt(won), boolToInt(lost), identity)
	if err != nil {
		return err
	}

	return expectOneRow(res, ErrNotFound)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func expectOneRow(res sql.Result, errIfNone error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n != 1 {
		return errIfNone
	}

	return nil
}

// LoadGame returns the stored game
func (p *PostgresStore) LoadGame(ctx context.Context, identity string) (*GameRecord, error) {
	const query = `
SELECT data, version
FROM games
WHERE identity = $1`

	var data []byte
	var rec GameRecord
	if err := p.db.QueryRowContext(ctx, query, identity).Scan(&data, &rec.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}

		return nil, err
	}

	var g blackjack.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}

	rec.Game = &g
	return &rec, nil
}

// Commit stores the game and any settlement in one transaction
func (p *PostgresStore) Commit(ctx context.Context, c *Commit) (*Session, int64, error) {
	data, err := json.Marshal(c.Game)
	if err != nil {
		return nil, 0, err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		if err := tx.Rollback(); err != nil {
			logrus.WithError(err).Error("could not rollback transaction")
		}
	}()

	version, err := p.saveGame(ctx, tx, c, data)
	if err != nil {
		return nil, 0, err
	}

	if c.ResetHP != nil {
		const query = `UPDATE sessions SET hp = $1 WHERE identity = $2`
		res, err := tx.ExecContext(ctx, query, *c.ResetHP, c.Identity)
		if err != nil {
			return nil, 0, err
		}

		if err := expectOneRow(res, ErrNotFound); err != nil {
			return nil, 0, err
		}
	}

	if c.Entry != nil {
		if err := p.settle(ctx, tx, c); err != nil {
			return nil, 0, err
		}
	}

	const query = `
UPDATE sessions
SET last_active = (NOW() AT TIME ZONE 'utc')
WHERE identity = $1
RETURNING ` + sessionColumns

	s, err := getSessionByRow(tx.QueryRowContext(ctx, query, c.Identity))
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	committed = true
	return s, version, nil
}

// saveGame writes the game if the stored version is still the expected one
func (p *PostgresStore) saveGame(ctx context.Context, tx *sql.Tx, c *Commit, data []byte) (int64, error) {
	var res sql.Result
	var err error
	if c.ExpectedVersion == 0 {
		const query = `
INSERT INTO games (identity, game_id, data, version)
VALUES ($1, $2, $3, 1)
ON CONFLICT (identity) DO NOTHING`
		res, err = tx.ExecContext(ctx, query, c.Identity, c.Game.ID, data)
	} else {
		const query = `
UPDATE games
SET game_id = $1, data = $2, version = version + 1, updated = (NOW() AT TIME ZONE 'utc')
WHERE identity = $3 AND version = $4`
		res, err = tx.ExecContext(ctx, query, c.Game.ID, data, c.Identity, c.ExpectedVersion)
	}

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			// foreign key violation, there is no session
			return 0, ErrNotFound
		}

		return 0, err
	}

	if err := expectOneRow(res, ErrConcurrencyConflict); err != nil {
		return 0, err
	}

	return c.ExpectedVersion + 1, nil
}

// settle moves the balance and records the ledger entry
func (p *PostgresStore) settle(ctx context.Context, tx *sql.Tx, c *Commit) error {
	e := c.Entry
	if e.HPAfter < 0 {
		return ErrNegativeBalance
	}

	const query = `
UPDATE sessions
SET hp = $1
WHERE identity = $2 AND hp = $3`

	res, err := tx.ExecContext(ctx, query, e.HPAfter, c.Identity, e.HPBefore)
	if err != nil {
		return err
	}

	if err := expectOneRow(res, ErrConcurrencyConflict); err != nil {
		return err
	}

	if err := applyRoundResult(ctx, tx, c.Identity, e.Outcome.Won(), e.Outcome.Lost()); err != nil {
		return err
	}

	const insert = `
INSERT INTO ledger_entries (id, identity, game_id, round, outcome, bet, delta, hp_before, hp_after, created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.ExecContext(ctx, insert, e.ID, c.Identity, c.Game.ID, c.Game.Round, e.Outcome, e.Bet, e.Delta, e.HPBefore, e.HPAfter, e.Created)
	return err
}

// Entries returns the most recent ledger entries, newest first
func (p *PostgresStore) Entries(ctx context.Context, identity string, limit int) ([]*ledger.Entry, error) {
	const query = `
SELECT ` + ledgerColumns + `
FROM ledger_entries
WHERE identity = $1
ORDER BY created DESC, seq DESC
LIMIT $2`

	rows, err := p.db.QueryContext(ctx, query, identity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*ledger.Entry, 0)
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.Outcome, &e.Bet, &e.Delta, &e.HPBefore, &e.HPAfter, &e.Created); err != nil {
			return nil, err
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
