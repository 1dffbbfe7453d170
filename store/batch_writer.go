package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

var batchSeq atomic.Uint64

func batchName() string {
	return fmt.Sprintf("batch_%d_%06d.parquet", time.Now().UnixNano(), batchSeq.Add(1)%1_000_000)
}

// BatchWriter streams rows of one table into a single Parquet file that only
// appears in the table directory once Finalize succeeds.
type BatchWriter[T any] struct {
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[T]

	bufferedGames int
	bufferedRows  int
}

func newBatchWriter[T any](root, table, schema string) (*BatchWriter[T], error) {
	if root == "" {
		return nil, fmt.Errorf("data root is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	outDir := filepath.Join(absRoot, table)
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[T](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", schema)

	return &BatchWriter[T]{
		tmpPath: tmpPath,
		outPath: filepath.Join(outDir, name),
		file:    f,
		writer:  w,
	}, nil
}

// NewEpisodeWriter opens a streaming episodes batch under root.
func NewEpisodeWriter(root string) (*BatchWriter[EpisodeRow], error) {
	return newBatchWriter[EpisodeRow](root, EpisodesTable, episodeSchema)
}

// NewDecisionWriter opens a streaming decisions batch under root.
func NewDecisionWriter(root string) (*BatchWriter[DecisionRow], error) {
	return newBatchWriter[DecisionRow](root, DecisionsTable, decisionSchema)
}

func (b *BatchWriter[T]) OutPath() string    { return b.outPath }
func (b *BatchWriter[T]) BufferedGames() int { return b.bufferedGames }
func (b *BatchWriter[T]) BufferedRows() int  { return b.bufferedRows }

func (b *BatchWriter[T]) WriteRows(rows []T) error {
	if b.writer == nil || b.file == nil {
		return fmt.Errorf("batch writer is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := b.writer.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	b.bufferedRows += len(rows)
	return nil
}

// NoteGameWritten counts a finished game towards the flush threshold.
func (b *BatchWriter[T]) NoteGameWritten() { b.bufferedGames++ }

// Finalize closes the file and moves it out of tmp/. With no rows written the
// tmp file is removed and outPath is empty.
func (b *BatchWriter[T]) Finalize() (outPath string, rows int, err error) {
	if b.writer == nil && b.file == nil {
		return "", 0, nil
	}
	rows = b.bufferedRows

	var closeErr, fileErr error
	if b.writer != nil {
		closeErr = b.writer.Close()
		b.writer = nil
	}
	if b.file != nil {
		_ = b.file.Sync()
		fileErr = b.file.Close()
		b.file = nil
	}
	if closeErr != nil {
		_ = os.Remove(b.tmpPath)
		return "", 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		_ = os.Remove(b.tmpPath)
		return "", 0, fmt.Errorf("close parquet file: %w", fileErr)
	}

	if rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", 0, nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", 0, fmt.Errorf("rename parquet: %w", err)
	}
	return b.outPath, rows, nil
}

// Abort closes the batch and removes it without publishing.
func (b *BatchWriter[T]) Abort() {
	if b.writer != nil {
		_ = b.writer.Close()
		b.writer = nil
	}
	if b.file != nil {
		_ = b.file.Close()
		b.file = nil
	}
	_ = os.Remove(b.tmpPath)
	b.bufferedRows, b.bufferedGames = 0, 0
}
