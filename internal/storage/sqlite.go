// Package storage provides SQLite-based persistence for simulation run
// summaries. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/sim"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("storage: run not found")

// Store manages the SQLite database connection for the run ledger.
type Store struct {
	db *sql.DB
}

// Run is the summary of one simulate invocation.
type Run struct {
	ID        string
	Agent     string
	Seed      uint64
	Rows      int
	Cols      int
	Episodes  int
	Failed    int
	Wins      int
	ScoreMean float64
	Elapsed   time.Duration
	CreatedAt time.Time
}

// EpisodeRecord is the summary of one episode of a run.
type EpisodeRecord struct {
	ID        int64
	RunID     string
	Index     int
	Outcome   string
	Truncated bool
	Steps     int
	Apples    int
	Score     int
	Length    int
	Level     string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			seed TEXT NOT NULL,
			grid_rows INTEGER NOT NULL,
			grid_cols INTEGER NOT NULL,
			episodes INTEGER NOT NULL,
			failed INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			score_mean REAL NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_agent ON runs(agent);

		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			episode INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			truncated INTEGER NOT NULL DEFAULT 0,
			steps INTEGER NOT NULL,
			apples INTEGER NOT NULL,
			score INTEGER NOT NULL,
			length INTEGER NOT NULL,
			level TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (run_id, episode)
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished batch and its episodes in one transaction.
// The returned Run carries the generated ID.
func (s *Store) SaveRun(agent string, grid core.Grid, b *sim.Batch) (Run, error) {
	st := b.Stats()
	run := Run{
		ID:        uuid.NewString(),
		Agent:     agent,
		Seed:      b.Seed,
		Rows:      grid.Rows,
		Cols:      grid.Cols,
		Episodes:  st.Episodes,
		Failed:    st.Failed,
		Wins:      st.Wins,
		ScoreMean: st.ScoreMean,
		Elapsed:   b.Elapsed,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs
		 (id, agent, seed, grid_rows, grid_cols, episodes, failed, wins, score_mean, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Agent, strconv.FormatUint(run.Seed, 10), run.Rows, run.Cols,
		run.Episodes, run.Failed, run.Wins, run.ScoreMean, run.Elapsed.Milliseconds(),
	); err != nil {
		return Run{}, fmt.Errorf("storage: cannot save run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO episodes
		 (run_id, episode, outcome, truncated, steps, apples, score, length, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot prepare episode insert: %w", err)
	}
	defer stmt.Close()

	for _, ep := range b.Episodes {
		if _, err := stmt.Exec(
			run.ID, ep.Index, ep.Outcome.Kind.String(), ep.Truncated,
			ep.Summary.Steps, ep.Summary.ApplesEaten, ep.Summary.Score,
			ep.Summary.Length, ep.Summary.Speed.String(),
		); err != nil {
			return Run{}, fmt.Errorf("storage: cannot save episode %d: %w", ep.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run, nil
}

const runColumns = `id, agent, seed, grid_rows, grid_cols, episodes, failed, wins, score_mean, elapsed_ms, created_at`

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunByID retrieves a run, or ErrRunNotFound.
func (s *Store) RunByID(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var seed string
	var elapsedMs int64
	var createdAt any
	if err := sc.Scan(
		&r.ID, &r.Agent, &seed, &r.Rows, &r.Cols,
		&r.Episodes, &r.Failed, &r.Wins, &r.ScoreMean, &elapsedMs, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("storage: cannot scan run: %w", err)
	}
	r.Seed, _ = strconv.ParseUint(seed, 10, 64)
	r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

const episodeColumns = `id, run_id, episode, outcome, truncated, steps, apples, score, length, level, created_at`

// Episodes retrieves every episode of a run ordered by index.
func (s *Store) Episodes(runID string) ([]EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE run_id = ?
		 ORDER BY episode`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	return collectEpisodes(rows)
}

// TopEpisodes retrieves the highest-scoring episodes across all runs.
// An empty agent matches every agent.
func (s *Store) TopEpisodes(agent string, limit int) ([]EpisodeRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT e.id, e.run_id, e.episode, e.outcome, e.truncated, e.steps,
		        e.apples, e.score, e.length, e.level, e.created_at
		 FROM episodes e
		 JOIN runs r ON r.id = e.run_id
		 WHERE ? = '' OR r.agent = ?
		 ORDER BY e.score DESC, e.steps ASC
		 LIMIT ?`,
		agent, agent, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	return collectEpisodes(rows)
}

func collectEpisodes(rows *sql.Rows) ([]EpisodeRecord, error) {
	defer rows.Close()

	var entries []EpisodeRecord
	for rows.Next() {
		var e EpisodeRecord
		var createdAt any
		if err := rows.Scan(
			&e.ID, &e.RunID, &e.Index, &e.Outcome, &e.Truncated, &e.Steps,
			&e.Apples, &e.Score, &e.Length, &e.Level, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// AgentStats contains aggregated statistics for one agent.
type AgentStats struct {
	Agent     string
	Runs      int
	Episodes  int
	HighScore int
	AvgScore  float64
	LastRun   time.Time
}

// AllAgentStats retrieves statistics for every agent with recorded runs.
func (s *Store) AllAgentStats() (map[string]*AgentStats, error) {
	rows, err := s.db.Query(
		`SELECT r.agent, COUNT(DISTINCT r.id), COUNT(e.id),
		        COALESCE(MAX(e.score), 0), COALESCE(AVG(e.score), 0), MAX(r.created_at)
		 FROM runs r
		 LEFT JOIN episodes e ON e.run_id = r.id
		 GROUP BY r.agent`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get agent stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*AgentStats)
	for rows.Next() {
		var st AgentStats
		var lastRun any
		if err := rows.Scan(&st.Agent, &st.Runs, &st.Episodes, &st.HighScore, &st.AvgScore, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		stats[st.Agent] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// DeleteRun removes a run and its episodes.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM episodes WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete episodes: %w", err)
	}
	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
