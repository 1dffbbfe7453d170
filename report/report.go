// Package report summarises stored self-play data with DuckDB queries over
// the Parquet batches.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brensch/gridsnakes/store"
	_ "github.com/duckdb/duckdb-go/v2"
)

// DB is an in-memory DuckDB with an episodes and a decisions view over one
// or more data roots.
type DB struct {
	db *sql.DB
}

const emptyEpisodes = `CREATE OR REPLACE VIEW episodes AS
	SELECT * FROM (
		SELECT
			NULL::VARCHAR AS episode_id,
			NULL::BIGINT AS seed,
			NULL::BIGINT AS started_ns,
			NULL::INTEGER AS "rows",
			NULL::INTEGER AS cols,
			NULL::INTEGER AS players,
			NULL::BOOLEAN AS walls,
			NULL::INTEGER AS stones,
			NULL::INTEGER AS max_snacks,
			NULL::INTEGER AS depth,
			NULL::VARCHAR AS outcome,
			NULL::INTEGER AS iterations,
			NULL::INTEGER[] AS winners,
			NULL::INTEGER[] AS losers,
			NULL::INTEGER[] AS lengths,
			NULL::INTEGER AS snacks_eaten,
			NULL::BIGINT AS duration_ns
	) WHERE 1=0`

const emptyDecisions = `CREATE OR REPLACE VIEW decisions AS
	SELECT * FROM (
		SELECT
			NULL::VARCHAR AS episode_id,
			NULL::INTEGER AS iteration,
			NULL::INTEGER AS player,
			NULL::VARCHAR AS action,
			NULL::BIGINT[] AS scores,
			NULL::INTEGER AS length,
			NULL::INTEGER AS head_row,
			NULL::INTEGER AS head_col
	) WHERE 1=0`

// Open creates the views. Roots without batches for a table are skipped; a
// table with no batches at all gets an empty view with the same columns.
func Open(roots []string) (*DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	_, _ = db.Exec("PRAGMA threads=4")

	tables := []struct {
		name, empty string
	}{
		{store.EpisodesTable, emptyEpisodes},
		{store.DecisionsTable, emptyDecisions},
	}
	for _, t := range tables {
		globs, err := tableGlobs(roots, t.name)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		q := t.empty
		if len(globs) > 0 {
			q = `CREATE OR REPLACE VIEW ` + t.name + ` AS
				SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], union_by_name=true)`
		}
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create %s view: %w", t.name, err)
		}
	}
	return &DB{db: db}, nil
}

// tableGlobs returns quoted read_parquet globs for the roots that hold at
// least one finished batch. Files still under tmp/ never match.
func tableGlobs(roots []string, table string) ([]string, error) {
	var globs []string
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		files, err := store.BatchFiles(root, table)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		glob := filepath.Join(root, table, "batch_*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}
	return globs, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func (d *DB) Close() error { return d.db.Close() }

// Group aggregates the episodes sharing a search depth and board setup.
type Group struct {
	Depth   int
	Rows    int
	Cols    int
	Players int
	Walls   bool

	Games         int64
	AvgIterations float64
	// Wins counts games with a winner, Losses games that ended with none.
	Wins   int64
	Losses int64
	Draws  int64
	// Capped games hit the iteration limit.
	Capped      int64
	AvgLength   float64
	AvgSnacks   float64
	AvgDuration float64 // milliseconds
}

// Summary groups every stored episode by depth and board.
func (d *DB) Summary(ctx context.Context) ([]Group, error) {
	const q = `SELECT
			depth, "rows", cols, players, walls,
			count(*) AS games,
			avg(iterations) AS avg_iterations,
			count_if(outcome = 'GameOver' AND coalesce(len(winners), 0) > 0) AS wins,
			count_if(outcome = 'GameOver' AND coalesce(len(winners), 0) = 0) AS losses,
			count_if(outcome = 'Draw') AS draws,
			count_if(outcome = 'Ok') AS capped,
			coalesce(avg(list_avg(lengths)), 0) AS avg_length,
			avg(snacks_eaten) AS avg_snacks,
			avg(duration_ns) / 1e6 AS avg_duration_ms
		FROM episodes
		GROUP BY depth, "rows", cols, players, walls
		ORDER BY depth, "rows", cols, players, walls`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(
			&g.Depth, &g.Rows, &g.Cols, &g.Players, &g.Walls,
			&g.Games, &g.AvgIterations,
			&g.Wins, &g.Losses, &g.Draws, &g.Capped,
			&g.AvgLength, &g.AvgSnacks, &g.AvgDuration,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ActionCount is how often the search picked one action.
type ActionCount struct {
	Action string
	Count  int64
}

// Actions counts the recorded decisions per chosen action.
func (d *DB) Actions(ctx context.Context) ([]ActionCount, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT action, count(*) FROM decisions GROUP BY action ORDER BY action`)
	if err != nil {
		return nil, fmt.Errorf("actions query: %w", err)
	}
	defer rows.Close()

	var out []ActionCount
	for rows.Next() {
		var a ActionCount
		if err := rows.Scan(&a.Action, &a.Count); err != nil {
			return nil, fmt.Errorf("scan actions: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
