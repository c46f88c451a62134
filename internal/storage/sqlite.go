package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/grimkor/fs-log-parser/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// formatTimestamp converts time.Time to SQLite-compatible UTC ISO8601 string
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Store provides database access
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Config methods ---

// GetConfig returns all persisted settings
func (s *Store) GetConfig(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT setting, value FROM config`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var setting string
		var value sql.NullString
		if err := rows.Scan(&setting, &value); err != nil {
			return nil, err
		}
		settings[setting] = value.String
	}
	return settings, rows.Err()
}

// SetConfig writes settings, last write wins
func (s *Store) SetConfig(ctx context.Context, settings map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO config (setting, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for key, value := range settings {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("writing setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// --- Match and game methods ---

// UpsertMatch inserts the match row if its id does not exist yet. A later
// duplicate write for the same id is a silent no-op; the existing row wins.
// Returns the match id in both cases.
func (s *Store) UpsertMatch(ctx context.Context, m *domain.MatchRecord) (string, error) {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO matches
		(match_id, timestamp, player_league, player_rank, player_stars, opp_id, opp_name, opp_platform, opp_platform_id, opp_input_config, opp_league, opp_rank, match_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.MatchID, formatTimestamp(ts), m.PlayerLeague, m.PlayerRank, m.PlayerStars,
		m.OppID, m.OppName, m.OppPlatform, m.OppPlatformID, m.OppInputConfig,
		m.OppLeague, m.OppRank, string(m.MatchType))
	if err != nil {
		return "", fmt.Errorf("upserting match: %w", err)
	}
	return m.MatchID, nil
}

// InsertGame appends a game row to its match. A placeholder match row is
// created in the same transaction so the foreign key always holds, even when
// the game result arrives before the match row. A duplicate game (same
// character pairing within the match) is dropped, not double-counted.
func (s *Store) InsertGame(ctx context.Context, g *domain.GameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO matches (match_id) VALUES (?)
	`, g.MatchID); err != nil {
		return fmt.Errorf("ensuring match row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO games (match_id, player_character, opp_character, player_score, opp_score)
		VALUES (?, ?, ?, ?, ?)
	`, g.MatchID, g.PlayerCharacter, g.OppCharacter, g.PlayerScore, g.OppScore); err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}

	return tx.Commit()
}

// GetMatch returns one match row by id
func (s *Store) GetMatch(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	var m domain.MatchRecord
	var ts string
	var matchType string
	err := s.db.QueryRowContext(ctx, `
		SELECT match_id, timestamp, player_league, player_rank, player_stars, opp_id, opp_name, opp_platform, opp_platform_id, opp_input_config, opp_league, opp_rank, match_type
		FROM matches WHERE match_id = ?
	`, matchID).Scan(&m.MatchID, &ts, &m.PlayerLeague, &m.PlayerRank, &m.PlayerStars,
		&m.OppID, &m.OppName, &m.OppPlatform, &m.OppPlatformID, &m.OppInputConfig,
		&m.OppLeague, &m.OppRank, &matchType)
	if err != nil {
		return nil, err
	}
	m.MatchType = domain.MatchType(matchType)
	if parsed, perr := time.Parse("2006-01-02T15:04:05Z", ts); perr == nil {
		m.Timestamp = parsed
	}
	return &m, nil
}

// RecentMatches returns the newest matches with their games
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]domain.MatchSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.match_id, m.timestamp, m.player_league, m.player_rank, m.player_stars,
		       m.opp_id, m.opp_name, m.opp_platform, m.opp_platform_id, m.opp_input_config,
		       m.opp_league, m.opp_rank, m.match_type,
		       g.player_character, g.opp_character, g.player_score, g.opp_score
		FROM (SELECT * FROM matches ORDER BY timestamp DESC, match_id LIMIT ?) m
		LEFT JOIN games g ON g.match_id = m.match_id
		ORDER BY m.timestamp DESC, m.match_id
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.MatchSummary
	index := make(map[string]int)
	for rows.Next() {
		var m domain.MatchRecord
		var ts, matchType string
		var playerChar, oppChar, playerScore, oppScore sql.NullString
		if err := rows.Scan(&m.MatchID, &ts, &m.PlayerLeague, &m.PlayerRank, &m.PlayerStars,
			&m.OppID, &m.OppName, &m.OppPlatform, &m.OppPlatformID, &m.OppInputConfig,
			&m.OppLeague, &m.OppRank, &matchType,
			&playerChar, &oppChar, &playerScore, &oppScore); err != nil {
			return nil, err
		}

		i, ok := index[m.MatchID]
		if !ok {
			m.MatchType = domain.MatchType(matchType)
			if parsed, perr := time.Parse("2006-01-02T15:04:05Z", ts); perr == nil {
				m.Timestamp = parsed
			}
			summaries = append(summaries, domain.MatchSummary{MatchRecord: m})
			i = len(summaries) - 1
			index[m.MatchID] = i
		}

		if playerChar.Valid {
			summaries[i].Games = append(summaries[i].Games, domain.GameRecord{
				MatchID:         m.MatchID,
				PlayerCharacter: playerChar.String,
				OppCharacter:    oppChar.String,
				PlayerScore:     playerScore.String,
				OppScore:        oppScore.String,
			})
		}
	}
	return summaries, rows.Err()
}

// WinLossSummary computes the per-match-type aggregate from persisted rows.
// Only matches with at least one game count; a match is a win when its game
// wins exceed its game losses, ties count as neither.
func (s *Store) WinLossSummary(ctx context.Context) ([]domain.WinLossSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT x.match_type,
		       COUNT(x.match_id)                                        AS total,
		       SUM(CASE WHEN x.win > x.lose THEN 1 ELSE 0 END)          AS wins,
		       SUM(CASE WHEN x.win < x.lose THEN 1 ELSE 0 END)          AS losses,
		       SUM(CASE WHEN x.win > x.lose AND x.last30 THEN 1 ELSE 0 END) AS wins30,
		       SUM(CASE WHEN x.win < x.lose AND x.last30 THEN 1 ELSE 0 END) AS losses30,
		       MIN(x.player_rank)                                       AS best_rank,
		       (SELECT m2.player_rank FROM matches m2
		        WHERE m2.match_type = x.match_type
		        ORDER BY m2.timestamp LIMIT 1)                          AS first_rank
		FROM (
		    SELECT m.match_id, m.match_type, m.player_rank, m.timestamp,
		           SUM(CASE WHEN CAST(g.player_score AS INTEGER) > CAST(g.opp_score AS INTEGER) THEN 1 ELSE 0 END) AS win,
		           SUM(CASE WHEN CAST(g.player_score AS INTEGER) < CAST(g.opp_score AS INTEGER) THEN 1 ELSE 0 END) AS lose,
		           CASE WHEN m.timestamp > strftime('%Y-%m-%dT%H:%M:%SZ', 'now', '-30 days') THEN 1 ELSE 0 END AS last30
		    FROM matches m
		    JOIN games g ON g.match_id = m.match_id
		    GROUP BY m.match_id
		) x
		GROUP BY x.match_type
		ORDER BY x.match_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.WinLossSummary
	for rows.Next() {
		var w domain.WinLossSummary
		var matchType string
		var bestRank, firstRank sql.NullString
		if err := rows.Scan(&matchType, &w.Total, &w.Wins, &w.Losses, &w.Wins30, &w.Losses30, &bestRank, &firstRank); err != nil {
			return nil, err
		}
		w.MatchType = domain.MatchType(matchType)
		w.BestRank = bestRank.String
		w.FirstRank = firstRank.String
		summaries = append(summaries, w)
	}
	return summaries, rows.Err()
}
