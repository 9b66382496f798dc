package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Index is a SQLite catalog of saved runs. It duplicates the per-run
// metadata.json files for fast listing and filtering; the run
// directories remain authoritative.
type Index struct {
	conn *sqlx.DB
}

func OpenIndex(path string) (*Index, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	idx := &Index{conn: conn}
	if err := idx.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return idx, nil
}

func (idx *Index) Close() error {
	return idx.conn.Close()
}

func (idx *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		gait TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		seed INTEGER NOT NULL,
		dt REAL NOT NULL,
		duration REAL NOT NULL,
		integrator TEXT NOT NULL,
		policy TEXT NOT NULL,
		steps INTEGER NOT NULL,
		metrics_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_gait ON runs(gait);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := idx.conn.Exec(schema)
	return err
}

func (idx *Index) Insert(meta RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}
	_, err = idx.conn.Exec(`
		INSERT OR REPLACE INTO runs
		(id, gait, timestamp, seed, dt, duration, integrator, policy, steps, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Gait, meta.Timestamp.Format(time.RFC3339Nano), meta.Seed,
		meta.Dt, meta.Duration, meta.Integrator, meta.Policy, meta.Steps, string(metrics))
	return err
}

type runRow struct {
	ID          string  `db:"id"`
	Gait        string  `db:"gait"`
	Timestamp   string  `db:"timestamp"`
	Seed        int64   `db:"seed"`
	Dt          float64 `db:"dt"`
	Duration    float64 `db:"duration"`
	Integrator  string  `db:"integrator"`
	Policy      string  `db:"policy"`
	Steps       int     `db:"steps"`
	MetricsJSON string  `db:"metrics_json"`
}

func (idx *Index) List() ([]RunMetadata, error) {
	var rows []runRow
	if err := idx.conn.Select(&rows, `SELECT * FROM runs ORDER BY timestamp DESC`); err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

// ListByGait returns runs for one gait, newest first.
func (idx *Index) ListByGait(gait string) ([]RunMetadata, error) {
	var rows []runRow
	err := idx.conn.Select(&rows,
		`SELECT * FROM runs WHERE gait = ? ORDER BY timestamp DESC`, gait)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

func decodeRows(rows []runRow) ([]RunMetadata, error) {
	runs := make([]RunMetadata, 0, len(rows))
	for _, r := range rows {
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return nil, err
		}
		var metrics map[string]float64
		if err := json.Unmarshal([]byte(r.MetricsJSON), &metrics); err != nil {
			return nil, err
		}
		runs = append(runs, RunMetadata{
			ID:         r.ID,
			Gait:       r.Gait,
			Timestamp:  ts,
			Seed:       r.Seed,
			Dt:         r.Dt,
			Duration:   r.Duration,
			Integrator: r.Integrator,
			Policy:     r.Policy,
			Steps:      r.Steps,
			Metrics:    metrics,
		})
	}
	return runs, nil
}
