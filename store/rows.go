// Package store persists self-play results as zstd-compressed Parquet.
//
// Two tables are written side by side under a data root:
//
//	<root>/episodes/batch_<unix_nano>.parquet   one EpisodeRow per game
//	<root>/decisions/batch_<unix_nano>.parquet  one DecisionRow per agent move
//
// Files are written under <table>/tmp and renamed into place, so readers
// never observe a partial file.
package store

// EpisodeRow summarises one finished self-play game.
type EpisodeRow struct {
	EpisodeID string `parquet:"episode_id"`
	Seed      int64  `parquet:"seed"`
	StartedNs int64  `parquet:"started_ns"`

	Rows      int32 `parquet:"rows"`
	Cols      int32 `parquet:"cols"`
	Players   int32 `parquet:"players"`
	Walls     bool  `parquet:"walls"`
	Stones    int32 `parquet:"stones"`
	MaxSnacks int32 `parquet:"max_snacks"`
	Depth     int32 `parquet:"depth"`

	// Outcome is Ok when the iteration cap stopped the game. Iterations counts
	// every tick played, including the final one.
	Outcome    string  `parquet:"outcome,dict"`
	Iterations int32   `parquet:"iterations"`
	Winners    []int32 `parquet:"winners"`
	Losers     []int32 `parquet:"losers"`
	// Lengths is the final length per player.
	Lengths     []int32 `parquet:"lengths"`
	SnacksEaten int32   `parquet:"snacks_eaten"`
	DurationNs  int64   `parquet:"duration_ns"`
}

// DecisionRow is one move picked by the search, with the score of every
// candidate action in Left, Right, Up, Down order.
type DecisionRow struct {
	EpisodeID string  `parquet:"episode_id,dict"`
	Iteration int32   `parquet:"iteration"`
	Player    int32   `parquet:"player"`
	Action    string  `parquet:"action,dict"`
	Scores    []int64 `parquet:"scores"`
	Length    int32   `parquet:"length"`
	HeadRow   int32   `parquet:"head_row"`
	HeadCol   int32   `parquet:"head_col"`
}

const (
	EpisodesTable  = "episodes"
	DecisionsTable = "decisions"

	episodeSchema  = "episode_row_v1"
	decisionSchema = "decision_row_v1"
)
